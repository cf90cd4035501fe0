package gen

import (
	"context"
	"errors"
)

// 上游生成调用的两类可恢复失败：临时不可用（可重试）与空结果
// （调用成功但未返回图片，通常是内容过滤，换用简化提示词重试一次）。
var (
	ErrTransient   = errors.New("gen: provider temporarily unavailable")
	ErrEmptyResult = errors.New("gen: provider returned no image")
)

// Image 上游返回的单张图片
type Image struct {
	Data     []byte
	MimeType string
}

// Params 一次上游调用的输入
type Params struct {
	Prompt   string
	Image    []byte
	MimeType string
	StyleID  string
}

// ImageProvider 图像生成上游。实现方通过 ErrTransient / ErrEmptyResult
// 区分失败类别，其余错误一律视为终止性失败。
type ImageProvider interface {
	ProviderID() string
	Generate(ctx context.Context, params Params) (*Image, error)
}
