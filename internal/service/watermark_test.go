package service

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeTestImage(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestApplyWatermark(t *testing.T) {
	original := encodeTestImage(t, 400, 300)

	data, mimeType, err := ApplyWatermark(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("mimeType = %q, want image/png", mimeType)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("watermarked output is not a decodable PNG: %v", err)
	}
	if img.Bounds().Dx() != 400 || img.Bounds().Dy() != 300 {
		t.Errorf("bounds = %v, want 400x300", img.Bounds())
	}
	if bytes.Equal(data, original) {
		t.Error("watermarked image should differ from the original")
	}
}

func TestApplyWatermarkRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"空负载", nil},
		{"非图片字节", []byte("not an image at all")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := ApplyWatermark(tt.data); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestMakeThumbnail(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		maxDim     int
		wantWidth  int
		wantHeight int
	}{
		{"横图缩放", 800, 400, 256, 256, 128},
		{"竖图缩放", 300, 600, 256, 128, 256},
		{"小图不放大", 100, 80, 256, 100, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := encodeTestImage(t, tt.width, tt.height)
			data, mimeType, err := MakeThumbnail(source, tt.maxDim)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mimeType != "image/jpeg" {
				t.Errorf("mimeType = %q, want image/jpeg", mimeType)
			}
			img, err := jpeg.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("thumbnail is not a decodable JPEG: %v", err)
			}
			if img.Bounds().Dx() != tt.wantWidth || img.Bounds().Dy() != tt.wantHeight {
				t.Errorf("bounds = %v, want %dx%d", img.Bounds(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestMakeThumbnailRejectsGarbage(t *testing.T) {
	if _, _, err := MakeThumbnail([]byte("garbage"), 256); err == nil {
		t.Fatal("expected error")
	}
}
