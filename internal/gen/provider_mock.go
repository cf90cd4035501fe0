package gen

import (
	"bytes"
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"

	"github.com/sirupsen/logrus"
)

const mockImageSize = 512

// MockProvider 降级路径使用的占位图生成器。同一风格总是产出
// 相同的图片，便于排查与前端联调。
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) ProviderID() string {
	return "mock"
}

func (m *MockProvider) Generate(ctx context.Context, params Params) (*Image, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	hasher := fnv.New32a()
	hasher.Write([]byte(params.StyleID))
	seed := hasher.Sum32()

	base := color.NRGBA{
		R: uint8(seed),
		G: uint8(seed >> 8),
		B: uint8(seed >> 16),
		A: 255,
	}
	accent := color.NRGBA{
		R: 255 - base.R,
		G: 255 - base.G,
		B: 255 - base.B,
		A: 255,
	}

	img := image.NewNRGBA(image.Rect(0, 0, mockImageSize, mockImageSize))
	bandWidth := 16 + int(seed%48)
	for y := 0; y < mockImageSize; y++ {
		for x := 0; x < mockImageSize; x++ {
			if ((x+y)/bandWidth)%2 == 0 {
				img.SetNRGBA(x, y, base)
			} else {
				img.SetNRGBA(x, y, accent)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	logrus.WithContext(ctx).WithFields(logrus.Fields{
		"provider": m.ProviderID(),
		"style":    params.StyleID,
	}).Info("gen_mock_placeholder")

	return &Image{Data: buf.Bytes(), MimeType: "image/png"}, nil
}

var _ ImageProvider = (*MockProvider)(nil)
