package entity

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Category 作品分类
type Category string

const (
	CategoryPets   Category = "pets"
	CategoryFamily Category = "family"
	CategoryKids   Category = "kids"
)

// IsValidCategory 检查分类是否为已知值
func IsValidCategory(value string) bool {
	switch Category(strings.TrimSpace(value)) {
	case CategoryPets, CategoryFamily, CategoryKids:
		return true
	default:
		return false
	}
}

// Identity 标识一次生成请求的归属方：认证用户或匿名访客，二者恰有其一。
type Identity struct {
	UserID uint
	AnonID string
}

// IsAuthenticated 判断是否为认证用户身份
func (i Identity) IsAuthenticated() bool {
	return i.UserID > 0
}

// Subject 返回并发闸门与额度账本共用的稳定键。
func (i Identity) Subject() string {
	if i.IsAuthenticated() {
		return fmt.Sprintf("user:%d", i.UserID)
	}
	return "anon:" + i.AnonID
}

// NewAnonID 生成新的匿名访客标识
func NewAnonID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("anon_%d", time.Now().UTC().UnixNano())
	}
	return "anon_" + hex.EncodeToString(buf)
}

// NewProjectID 生成不会复用的项目标识，作为额度流水引用和画廊外键。
func NewProjectID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("proj_%d", time.Now().UTC().UnixNano())
	}
	return fmt.Sprintf("proj_%d_%s", time.Now().UTC().UnixMilli(), hex.EncodeToString(buf))
}

// GenerationOptions 生成请求的可选参数
type GenerationOptions struct {
	Gender       string `json:"gender,omitempty"`
	CustomPrompt string `json:"customPrompt,omitempty"`
}

// GenerationRequest is one fully validated generation call. The raw options
// blob is kept alongside the parsed form so it can be persisted untouched.
type GenerationRequest struct {
	Identity   Identity
	Image      []byte
	MimeType   string
	StyleID    string
	Category   Category
	Options    GenerationOptions
	RawOptions JSONMap
}

// GenerationResult 成功响应体，字段命名与前端契约保持一致。
type GenerationResult struct {
	Success          bool   `json:"success"`
	ProjectID        string `json:"projectId"`
	GeneratedImage   string `json:"generatedImage"`
	ThumbnailImage   string `json:"thumbnailImage"`
	Watermarked      bool   `json:"watermarked"`
	CreditsUsed      int    `json:"creditsUsed"`
	CreditsRemaining int64  `json:"creditsRemaining"`
	GallerySaved     *bool  `json:"gallerySaved,omitempty"`
}

// GenerationError 失败响应体
type GenerationError struct {
	Success bool           `json:"success"`
	Error   GenerationCode `json:"error"`
}

// GenerationCode 错误码与展示文案
type GenerationCode struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewGenerationError 构造标准失败响应体
func NewGenerationError(code, message string) GenerationError {
	return GenerationError{
		Success: false,
		Error:   GenerationCode{Code: code, Message: message},
	}
}
