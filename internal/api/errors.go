package api

import (
	"artify/internal/entity"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 认证与画廊接口使用的错误码
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeEmailExists        = "ERR_EMAIL_EXISTS"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
	ErrCodeUserDisabled       = "ERR_USER_DISABLED"
	ErrCodeUserNotFound       = "ERR_USER_NOT_FOUND"
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// statusForCode 将生成接口的错误码映射到 HTTP 状态码。
// 仅在响应头尚未写出时使用，已写出后一律走 200 加 success:false 正文。
func statusForCode(code string) int {
	switch code {
	case entity.CodeInvalidRequest, entity.CodeInvalidCategory, entity.CodeInvalidStyle, entity.CodeInvalidOptions:
		return http.StatusBadRequest
	case entity.CodeFreeTrialExhausted, entity.CodeInsufficientCredits:
		return http.StatusPaymentRequired
	case entity.CodeGenerationInProgress:
		return http.StatusTooManyRequests
	case entity.CodeServiceNotConfigured, entity.CodeInternalError:
		return http.StatusInternalServerError
	case entity.CodeGenerationUpstreamFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeGenerationError 按生成接口的契约写出失败响应
func writeGenerationError(c *gin.Context, code, message string) {
	c.JSON(statusForCode(code), entity.NewGenerationError(code, message))
}
