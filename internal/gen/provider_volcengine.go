package gen

import (
	"artify/internal/config"
	"artify/internal/utils"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	volcModel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"
)

const volcengineDefaultModel = "doubao-seedream-4-0-250828"

// VolcengineProvider 调用火山方舟的图生图接口。
// 上游以流式事件返回结果，图片以 24 小时内有效的下载链接交付，
// 拿到链接后再拉取字节。
type VolcengineProvider struct {
	client     *arkruntime.Client
	httpClient *http.Client
	model      string
}

func NewVolcengineProvider(cfg config.Config) (*VolcengineProvider, error) {
	if strings.TrimSpace(cfg.VolcengineAPIKey) == "" {
		return nil, errors.New("volcengine api key is not configured")
	}
	model := strings.TrimSpace(cfg.VolcengineModel)
	if model == "" {
		model = volcengineDefaultModel
	}

	return &VolcengineProvider{
		client:     arkruntime.NewClientWithApiKey(cfg.VolcengineAPIKey),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		model:      model,
	}, nil
}

func (p *VolcengineProvider) ProviderID() string {
	return "volcengine"
}

func (p *VolcengineProvider) Generate(ctx context.Context, params Params) (*Image, error) {
	logger := providerLogger(ctx, p.ProviderID(), params.StyleID)
	logger.WithFields(logrus.Fields{
		"model":          p.model,
		"prompt_length":  len([]rune(params.Prompt)),
		"prompt_preview": logSnippet(params.Prompt),
		"image_bytes":    len(params.Image),
	}).Info("gen_request_start")

	var refImages []string
	if len(params.Image) > 0 {
		refImages = append(refImages, utils.BuildDataURL(params.MimeType, params.Image))
	}

	// 关闭组图，单次请求只取一张结果图。
	sequential := volcModel.SequentialImageGeneration("disabled")
	generateReq := volcModel.GenerateImagesRequest{
		Model:                     p.model,
		Prompt:                    params.Prompt,
		Image:                     refImages,
		Size:                      volcengine.String("2K"),
		ResponseFormat:            volcengine.String(volcModel.GenerateImagesResponseFormatURL),
		Watermark:                 volcengine.Bool(false),
		SequentialImageGeneration: &sequential,
	}

	stream, err := p.client.GenerateImagesStreaming(ctx, generateReq)
	if err != nil {
		logger.WithError(err).Error("gen_request_failed")
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer stream.Close()

	var imageURL string
	for {
		recv, recvErr := stream.Recv()
		if recvErr == io.EOF {
			break
		}
		if recvErr != nil {
			logger.WithError(recvErr).Error("gen_stream_recv_failed")
			return nil, fmt.Errorf("%w: %v", ErrTransient, recvErr)
		}

		switch recv.Type {
		case "image_generation.partial_failed":
			if recv.Error == nil {
				continue
			}
			logger.WithFields(logrus.Fields{
				"error_code":    recv.Error.Code,
				"error_message": logSnippet(recv.Error.Message),
			}).Warn("gen_response_error")
			if volcengineIsTransient(recv.Error.Code) {
				return nil, fmt.Errorf("%w: %s", ErrTransient, recv.Error.Message)
			}
			return nil, errors.New(recv.Error.Message)
		case "image_generation.partial_succeeded":
			if recv.Error == nil && recv.Url != nil {
				imageURL = *recv.Url
			}
		}
	}

	if imageURL == "" {
		logger.Warn("gen_no_image_in_response")
		return nil, ErrEmptyResult
	}
	return p.fetchImage(ctx, logger, imageURL)
}

// fetchImage 拉取生成结果的下载链接。链接侧的失败一律按临时失败处理，
// 留给上层的重试预算消化。
func (p *VolcengineProvider) fetchImage(ctx context.Context, logger *logrus.Entry, url string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Error("gen_image_download_failed")
		return nil, fmt.Errorf("%w: download generated image: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		logger.WithField("status", resp.StatusCode).Warn("gen_image_download_failed")
		return nil, fmt.Errorf("%w: image download failed with status %d", ErrTransient, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WithError(err).Error("gen_image_read_failed")
		return nil, fmt.Errorf("%w: read generated image: %v", ErrTransient, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyResult
	}

	mimeType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	logger.WithField("image_bytes", len(data)).Info("gen_success")
	return &Image{Data: data, MimeType: mimeType}, nil
}

// volcengineIsTransient 按方舟错误码判断是否为临时失败
func volcengineIsTransient(code string) bool {
	switch code {
	case "InternalServiceError", "ServerOverloaded", "RateLimitExceeded":
		return true
	}
	return false
}

var _ ImageProvider = (*VolcengineProvider)(nil)
