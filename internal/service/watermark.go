package service

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	_ "image/gif"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	watermarkLabel    = "artify preview"
	thumbnailMaxDim   = 256
	thumbnailQuality  = 80
	watermarkStepX    = 160
	watermarkStepY    = 120
	watermarkDiagonal = 40
)

// ApplyWatermark 在生成的图片上平铺半透明文字水印，返回 PNG 编码结果。
// 无法解析或编码时返回错误，由调用方透传原图。
func ApplyWatermark(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New("empty image payload")
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}

	bounds := src.Bounds()
	canvas := image.NewNRGBA(bounds)
	xdraw.Draw(canvas, bounds, src, bounds.Min, xdraw.Src)

	drawer := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 96}),
		Face: basicfont.Face7x13,
	}

	row := 0
	for y := bounds.Min.Y + watermarkStepY/2; y < bounds.Max.Y; y += watermarkStepY {
		offset := (row * watermarkDiagonal) % watermarkStepX
		for x := bounds.Min.X + offset; x < bounds.Max.X; x += watermarkStepX {
			drawer.Dot = fixed.P(x, y)
			drawer.DrawString(watermarkLabel)
		}
		row++
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/png", nil
}

// MakeThumbnail 等比缩放图片到给定边界内，输出 JPEG。
func MakeThumbnail(data []byte, maxDim int) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New("empty image payload")
	}
	if maxDim <= 0 {
		maxDim = thumbnailMaxDim
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, "", errors.New("invalid image dimensions")
	}

	targetW, targetH := width, height
	if width > maxDim || height > maxDim {
		if width >= height {
			targetW = maxDim
			targetH = height * maxDim / width
		} else {
			targetH = maxDim
			targetW = width * maxDim / height
		}
		if targetW < 1 {
			targetW = 1
		}
		if targetH < 1 {
			targetH = 1
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}
