package dto

import "net/http"

// API error codes. Every code the service emits is listed in codeStatus.
const (
	ErrCodeInternal    = "ERR_INTERNAL"
	ErrCodeUnavailable = "ERR_UNAVAILABLE"

	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeInvalidSignature is a webhook whose HMAC does not verify
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	// Pipeline rejections. All map to 422 so callers can tell them from malformed requests.
	ErrCodeInvalidState          = "ERR_INVALID_STATE"
	ErrCodePayloadInvalid        = "ERR_PAYLOAD_INVALID"
	ErrCodeShapeMismatch         = "ERR_SHAPE_MISMATCH"
	ErrCodeTemplateInvalid       = "ERR_TEMPLATE_INVALID"
	ErrCodePlatformNotConfigured = "ERR_PLATFORM_NOT_CONFIGURED"
)

var codeStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	ErrCodeUnauthorized:     http.StatusUnauthorized,
	ErrCodeForbidden:        http.StatusForbidden,
	ErrCodeTokenExpired:     http.StatusUnauthorized,
	ErrCodeTokenInvalid:     http.StatusUnauthorized,
	ErrCodeInvalidSignature: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodePayloadInvalid:        http.StatusUnprocessableEntity,
	ErrCodeShapeMismatch:         http.StatusUnprocessableEntity,
	ErrCodeTemplateInvalid:       http.StatusUnprocessableEntity,
	ErrCodePlatformNotConfigured: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the status for an API error code, 500 for unknown codes
func GetHTTPStatus(code string) int {
	if status, ok := codeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes translates shared.DomainError codes into API codes
var domainCodes = map[string]string{
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"NOT_FOUND":            ErrCodeNotFound,
	"INVALID_STATE":        ErrCodeInvalidState,
}

// NormalizeErrorCode maps a domain error code to its API code. Anything else passes through.
func NormalizeErrorCode(code string) string {
	if api, ok := domainCodes[code]; ok {
		return api
	}
	return code
}
