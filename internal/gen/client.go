package gen

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Request 一次完整的生成调用：主提示词加一个简化变体，
// 简化变体仅在上游返回空结果时使用一次。
type Request struct {
	Prompt        string
	RelaxedPrompt string
	StyleID       string
	Image         []byte
	MimeType      string
}

// Outcome 生成调用的最终结果。Degraded 表示走了 mock 降级路径，
// RelaxedUsed 表示图片由简化提示词产出。
type Outcome struct {
	Image       *Image
	Degraded    bool
	RelaxedUsed bool
}

// Client 在单个上游之上叠加重试、简化提示词回退与可选的 mock 降级。
// provider 为 nil 时表示未配置真实上游，仅剩降级路径可用。
type Client struct {
	provider ImageProvider
	fallback ImageProvider
	policy   RetryPolicy
}

// NewClient 组装生成客户端。fallback 传 nil 即禁用降级。
func NewClient(provider ImageProvider, fallback ImageProvider, policy RetryPolicy) *Client {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Client{
		provider: provider,
		fallback: fallback,
		policy:   policy,
	}
}

// Usable 判断客户端是否有任何可用路径。
func (c *Client) Usable() bool {
	return c != nil && (c.provider != nil || c.fallback != nil)
}

// Generate 执行重试 → 简化提示词 → mock 降级的完整链路。
// 仅当链路全部耗尽且未启用降级时返回错误。
func (c *Client) Generate(ctx context.Context, req Request) (*Outcome, error) {
	logger := logrus.WithContext(ctx).WithField("style", req.StyleID)

	var lastErr error
	if c.provider != nil {
		image, relaxed, err := c.callProvider(ctx, req)
		if err == nil {
			return &Outcome{Image: image, RelaxedUsed: relaxed}, nil
		}
		lastErr = err
	} else {
		lastErr = errors.New("gen: no provider configured")
	}

	if c.fallback != nil {
		logger.WithError(lastErr).Warn("generate_degraded_to_mock")
		image, err := c.fallback.Generate(ctx, Params{
			Prompt:   req.Prompt,
			Image:    req.Image,
			MimeType: req.MimeType,
			StyleID:  req.StyleID,
		})
		if err != nil {
			return nil, fmt.Errorf("gen: mock fallback failed: %w", err)
		}
		return &Outcome{Image: image, Degraded: true}, nil
	}

	logger.WithError(lastErr).Error("generate_exhausted")
	return nil, lastErr
}

// callProvider 对真实上游做有界重试，空结果时换用简化提示词再试一次。
func (c *Client) callProvider(ctx context.Context, req Request) (*Image, bool, error) {
	logger := providerLogger(ctx, c.provider.ProviderID(), req.StyleID)

	params := Params{
		Prompt:   req.Prompt,
		Image:    req.Image,
		MimeType: req.MimeType,
		StyleID:  req.StyleID,
	}

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		image, err := c.provider.Generate(ctx, params)
		if err == nil {
			return image, false, nil
		}
		lastErr = err

		if errors.Is(err, ErrEmptyResult) {
			break
		}
		if !errors.Is(err, ErrTransient) {
			logger.WithField("attempt", attempt).WithError(err).Error("generate_terminal_failure")
			return nil, false, err
		}

		if attempt == c.policy.MaxAttempts {
			break
		}
		delay := c.policy.Delay(attempt)
		logger.WithFields(logrus.Fields{
			"attempt":  attempt,
			"delay_ms": delay.Milliseconds(),
		}).Warn("generate_transient_retry")
		if sleepErr := c.policy.sleep(ctx, delay); sleepErr != nil {
			return nil, false, sleepErr
		}
	}

	if errors.Is(lastErr, ErrEmptyResult) && req.RelaxedPrompt != "" {
		logger.Info("generate_relaxed_prompt_fallback")
		params.Prompt = req.RelaxedPrompt
		image, err := c.provider.Generate(ctx, params)
		if err == nil {
			return image, true, nil
		}
		lastErr = err
	}

	return nil, false, lastErr
}
