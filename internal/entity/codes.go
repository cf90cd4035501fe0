package entity

// 生成接口使用的稳定错误码。前端依赖这些值展示不同文案，不可改名。
const (
	CodeInvalidRequest           = "INVALID_REQUEST"
	CodeInvalidCategory          = "INVALID_CATEGORY"
	CodeInvalidStyle             = "INVALID_STYLE"
	CodeInvalidOptions           = "INVALID_OPTIONS"
	CodeFreeTrialExhausted       = "FREE_TRIAL_EXHAUSTED"
	CodeInsufficientCredits      = "INSUFFICIENT_CREDITS"
	CodeGenerationInProgress     = "GENERATION_IN_PROGRESS"
	CodeServiceNotConfigured     = "SERVICE_NOT_CONFIGURED"
	CodeGenerationUpstreamFailed = "GENERATION_UPSTREAM_FAILED"
	CodeInternalError            = "INTERNAL_ERROR"
)
