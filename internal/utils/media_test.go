package utils

import (
	"bytes"
	"testing"
)

func TestExtensionFromMime(t *testing.T) {
	tests := []struct {
		name string
		mime string
		want string
	}{
		{"jpeg", "image/jpeg", "jpg"},
		{"png 带空白", "  image/png  ", "png"},
		{"大写", "IMAGE/WEBP", "webp"},
		{"未知类型", "application/octet-stream", "bin"},
		{"空值", "", "bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtensionFromMime(tt.mime); got != tt.want {
				t.Errorf("ExtensionFromMime(%q) = %q, want %q", tt.mime, got, tt.want)
			}
		})
	}
}

func TestBuildAndDecodeDataURL(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4E, 0x47}

	url := BuildDataURL("image/png", payload)
	if url == "" {
		t.Fatal("expected non-empty data URL")
	}

	mime, raw, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	if !bytes.Equal(raw, payload) {
		t.Error("round-tripped payload does not match")
	}
}

func TestBuildDataURLEmptyPayload(t *testing.T) {
	if got := BuildDataURL("image/png", nil); got != "" {
		t.Errorf("BuildDataURL with empty payload = %q, want empty", got)
	}
}

func TestSplitDataURL(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		wantMime    string
		wantPayload string
	}{
		{"标准 data URL", "data:image/jpeg;base64,abc123", "image/jpeg", "abc123"},
		{"缺省 MIME", "data:;base64,abc", "image/png", "abc"},
		{"裸 base64", "abc123", "image/png", "abc123"},
		{"缺少 base64 标记", "data:image/png,abc", "", ""},
		{"空字符串", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, payload := SplitDataURL(tt.value)
			if mime != tt.wantMime || payload != tt.wantPayload {
				t.Errorf("SplitDataURL(%q) = (%q, %q), want (%q, %q)", tt.value, mime, payload, tt.wantMime, tt.wantPayload)
			}
		})
	}
}
