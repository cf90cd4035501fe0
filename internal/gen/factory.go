package gen

import (
	"artify/internal/config"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewProvider 按配置实例化真实上游
func NewProvider(cfg config.Config) (ImageProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.GenProvider)) {
	case "gemini", "":
		return NewGeminiProvider(cfg)
	case "openai":
		return NewOpenAIProvider(cfg)
	case "volcengine":
		return NewVolcengineProvider(cfg)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", cfg.GenProvider)
	}
}

// NewClientFromConfig 组装完整客户端。真实上游缺失但允许降级时
// 返回仅有 mock 路径的客户端；两者都不可用时返回 nil。
func NewClientFromConfig(cfg config.Config) *Client {
	var fallback ImageProvider
	if cfg.MockAllowed() {
		fallback = NewMockProvider()
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		logrus.WithError(err).Warn("gen_provider_unavailable")
		provider = nil
	}

	if provider == nil && fallback == nil {
		return nil
	}
	return NewClient(provider, fallback, DefaultRetryPolicy())
}
