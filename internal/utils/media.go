package utils

import (
	"encoding/base64"
	"strings"
)

// ExtensionFromMime 根据 MIME 类型返回不带点的文件扩展名
func ExtensionFromMime(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "bin"
	}
}

// BuildDataURL 将图片字节编码为 data URL
func BuildDataURL(mimeType string, data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// SplitDataURL 拆出 data URL 中的 MIME 类型与 base64 负载。
// 输入不是 data URL 时按原样返回负载并给出默认 MIME。
func SplitDataURL(value string) (string, string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ""
	}
	if !strings.HasPrefix(value, "data:") {
		return "image/png", value
	}
	rest := strings.TrimPrefix(value, "data:")
	semi := strings.Index(rest, ";base64,")
	if semi < 0 {
		return "", ""
	}
	mime := rest[:semi]
	payload := rest[semi+len(";base64,"):]
	if mime == "" {
		mime = "image/png"
	}
	return mime, payload
}

// DecodeDataURL 解码 data URL 为原始字节
func DecodeDataURL(value string) (string, []byte, error) {
	mime, payload := SplitDataURL(value)
	if payload == "" {
		return mime, nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	return mime, raw, nil
}
