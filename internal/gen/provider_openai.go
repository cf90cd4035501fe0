package gen

import (
	"artify/internal/config"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIProvider 通过 OpenAI 兼容接口生成图片，可通过 BaseURL
// 指向任意兼容网关。
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(cfg config.Config) (*OpenAIProvider, error) {
	apiKey := strings.TrimSpace(cfg.OpenAIAPIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is not configured")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.OpenAIBaseURL); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  openai.CreateImageModelDallE3,
	}, nil
}

func (p *OpenAIProvider) ProviderID() string {
	return "openai"
}

func (p *OpenAIProvider) Generate(ctx context.Context, params Params) (*Image, error) {
	logger := providerLogger(ctx, p.ProviderID(), params.StyleID)
	logger.WithFields(logrus.Fields{
		"prompt_length":  len([]rune(params.Prompt)),
		"prompt_preview": logSnippet(params.Prompt),
	}).Info("gen_request_start")

	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         params.Prompt,
		Model:          p.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		logger.WithError(err).Warn("gen_request_failed")
		return nil, classifyOpenAIError(err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		logger.Warn("gen_no_image_in_response")
		return nil, ErrEmptyResult
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		logger.WithError(err).Error("gen_image_decode_failed")
		return nil, err
	}

	logger.WithField("image_bytes", len(raw)).Info("gen_success")
	return &Image{Data: raw, MimeType: "image/png"}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return err
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}

var _ ImageProvider = (*OpenAIProvider)(nil)
