package gen

import (
	"artify/internal/config"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const geminiImageModel = "gemini-2.5-flash-image-preview"

// GeminiProvider 调用 Google Gemini 的图生图接口
type GeminiProvider struct {
	httpClient *http.Client
	apiKey     string
}

func NewGeminiProvider(cfg config.Config) (*GeminiProvider, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, errors.New("gemini api key is not configured")
	}

	return &GeminiProvider{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     cfg.GeminiAPIKey,
	}, nil
}

func (g *GeminiProvider) ProviderID() string {
	return "gemini"
}

func (g *GeminiProvider) Generate(ctx context.Context, params Params) (*Image, error) {
	logger := providerLogger(ctx, g.ProviderID(), params.StyleID)
	logger.WithFields(logrus.Fields{
		"prompt_length":  len([]rune(params.Prompt)),
		"prompt_preview": logSnippet(params.Prompt),
		"image_bytes":    len(params.Image),
	}).Info("gen_request_start")

	parts := []geminiContentPart{{Text: params.Prompt}}
	if len(params.Image) > 0 {
		mime := params.MimeType
		if mime == "" {
			mime = "image/jpeg"
		}
		parts = append(parts, geminiContentPart{
			InlineData: &geminiInlineData{
				MimeType: mime,
				Data:     base64.StdEncoding.EncodeToString(params.Image),
			},
		})
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: parts},
		},
		GenerationConfig: &geminiConfig{
			MaxOutputTokens: 2048,
			Temperature:     0.8,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		logger.WithError(err).Error("gen_payload_marshal_failed")
		return nil, err
	}

	endpoint := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", geminiImageModel, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		logger.WithError(err).Error("gen_request_build_failed")
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Error("gen_request_failed")
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.WithField("status", resp.StatusCode).WithError(err).Error("gen_response_read_failed")
		return nil, fmt.Errorf("%w: read gemini response: %v", ErrTransient, err)
	}

	logger.WithField("status", resp.StatusCode).Info("gen_response_status")
	if resp.StatusCode >= http.StatusBadRequest {
		logger.WithFields(logrus.Fields{
			"status":       resp.StatusCode,
			"body_preview": logSnippet(string(respBody)),
		}).Warn("gen_response_error")

		message := fmt.Sprintf("gemini request failed with status %d", resp.StatusCode)
		var apiErr geminiErrorResponse
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			message = apiErr.Error.Message
		}
		if geminiIsTransient(resp.StatusCode, apiErr.Error.Status) {
			return nil, fmt.Errorf("%w: %s", ErrTransient, message)
		}
		return nil, errors.New(message)
	}

	var apiResponse geminiResponse
	if err := json.Unmarshal(respBody, &apiResponse); err != nil {
		logger.WithError(err).Error("gen_response_unmarshal_failed")
		return nil, err
	}

	for _, candidate := range apiResponse.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			raw, decodeErr := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if decodeErr != nil {
				logger.WithError(decodeErr).Error("gen_image_decode_failed")
				return nil, decodeErr
			}
			mimeType := part.InlineData.MimeType
			if mimeType == "" {
				mimeType = "image/png"
			}
			logger.WithField("image_bytes", len(raw)).Info("gen_success")
			return &Image{Data: raw, MimeType: mimeType}, nil
		}
	}

	logger.Warn("gen_no_image_in_response")
	return nil, ErrEmptyResult
}

// geminiIsTransient 按状态码与错误状态名判断是否为临时失败
func geminiIsTransient(statusCode int, status string) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "RESOURCE_EXHAUSTED", "UNAVAILABLE", "DEADLINE_EXCEEDED":
		return true
	}
	return false
}

type geminiContentPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string              `json:"role"`
	Parts []geminiContentPart `json:"parts"`
}

type geminiConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float32 `json:"temperature,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig *geminiConfig   `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiContentPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

var _ ImageProvider = (*GeminiProvider)(nil)
