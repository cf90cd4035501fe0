package api

import (
	"artify/internal/entity"
	"artify/internal/service"
	"artify/internal/utils"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 上传图片的大小上限
const maxUploadBytes = 15 << 20

// readImagePayload 读取上传的图片。优先取 multipart 文件，缺失时回退到
// imageData 字段里的 data URL（前端画布裁剪后的提交走这条路）。
func readImagePayload(c *gin.Context) ([]byte, string, *service.RequestError) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		inline := strings.TrimSpace(c.PostForm("imageData"))
		if inline == "" {
			return nil, "", service.NewRequestError(entity.CodeInvalidRequest, "image file is required")
		}
		if len(inline) > maxUploadBytes*4/3+64 {
			return nil, "", service.NewRequestError(entity.CodeInvalidRequest, "image file is too large")
		}
		mimeType, data, decodeErr := utils.DecodeDataURL(inline)
		if decodeErr != nil || len(data) == 0 {
			return nil, "", service.NewRequestError(entity.CodeInvalidRequest, "imageData must be a valid data URL")
		}
		return data, mimeType, nil
	}

	if fileHeader.Size > maxUploadBytes {
		return nil, "", service.NewRequestError(entity.CodeInvalidRequest, "image file is too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", service.NewRequestError(entity.CodeInvalidRequest, "failed to read image file")
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil || len(imageData) == 0 {
		return nil, "", service.NewRequestError(entity.CodeInvalidRequest, "failed to read image file")
	}
	if len(imageData) > maxUploadBytes {
		return nil, "", service.NewRequestError(entity.CodeInvalidRequest, "image file is too large")
	}

	return imageData, fileHeader.Header.Get("Content-Type"), nil
}

// validateGenerationRequest 将 multipart 表单解析为类型化的生成请求。
// 校验规则按固定顺序执行，纯函数，无副作用。
func validateGenerationRequest(c *gin.Context) (*entity.GenerationRequest, *service.RequestError) {
	imageData, mimeType, imgErr := readImagePayload(c)
	if imgErr != nil {
		return nil, imgErr
	}

	styleID := strings.TrimSpace(c.PostForm("styleId"))
	category := strings.TrimSpace(c.PostForm("category"))
	if styleID == "" || category == "" {
		return nil, service.NewRequestError(entity.CodeInvalidRequest, "styleId and category are required")
	}

	if !entity.IsValidCategory(category) {
		return nil, service.NewRequestError(entity.CodeInvalidCategory, "unknown category")
	}

	if _, ok := entity.StyleByID(styleID); !ok {
		return nil, service.NewRequestError(entity.CodeInvalidStyle, "unknown style")
	}

	var options entity.GenerationOptions
	var rawOptions entity.JSONMap
	if optionsField := strings.TrimSpace(c.PostForm("options")); optionsField != "" {
		if err := json.Unmarshal([]byte(optionsField), &options); err != nil {
			return nil, service.NewRequestError(entity.CodeInvalidOptions, "options must be a valid JSON object")
		}
		if err := json.Unmarshal([]byte(optionsField), &rawOptions); err != nil {
			return nil, service.NewRequestError(entity.CodeInvalidOptions, "options must be a valid JSON object")
		}
	}

	if strings.TrimSpace(mimeType) == "" {
		mimeType = http.DetectContentType(imageData)
	}

	return &entity.GenerationRequest{
		Image:      imageData,
		MimeType:   mimeType,
		StyleID:    styleID,
		Category:   entity.Category(category),
		Options:    options,
		RawOptions: rawOptions,
	}, nil
}

// Generate 生成接口。完整链路：校验 → 身份解析 → 并发闸门 → 准入 →
// 流式提交 → 上游生成与后处理 → 终结响应，闸门在所有退出路径上释放。
func (h *HTTPHandler) Generate(c *gin.Context) {
	req, verr := validateGenerationRequest(c)
	if verr != nil {
		writeGenerationError(c, verr.Code, verr.Message)
		return
	}

	identity := h.resolveIdentity(c)
	req.Identity = identity
	subject := identity.Subject()

	if !h.gate.Acquire(subject) {
		writeGenerationError(c, entity.CodeGenerationInProgress, "a generation is already in progress for this account")
		return
	}
	var releaseOnce sync.Once
	release := func() {
		releaseOnce.Do(func() { h.gate.Release(subject) })
	}
	defer release()

	if _, admErr := h.orchestrator.EnsureCanGenerate(c.Request.Context(), identity); admErr != nil {
		writeGenerationError(c, admErr.Code, admErr.Message)
		return
	}

	if !h.orchestrator.Usable() {
		writeGenerationError(c, entity.CodeServiceNotConfigured, "image generation is not configured")
		return
	}

	stream := NewResponseStream(c, h.keepAliveInterval)
	stream.OnClientGone = release
	defer stream.Close()
	stream.Commit()

	// 客户端断开不终止在途的上游调用，迟到的结果被丢弃而不是写进已关闭的连接。
	runCtx := context.WithoutCancel(c.Request.Context())
	result, runErr := h.orchestrator.Run(runCtx, req)

	if stream.ClientGone() {
		logrus.WithField("subject", subject).Info("generate_result_discarded")
		return
	}
	if runErr != nil {
		stream.Fail(runErr.Code, runErr.Message)
		return
	}
	stream.Succeed(result)
}
