package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details any    `json:"details,omitempty"` // 詳細信息
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
	Details any
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// Response 轉換為 API 錯誤響應
func (e *CustomError) Response() ErrorResponse {
	return ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// WithDetails 複製錯誤並附加詳細信息
func (e *CustomError) WithDetails(err error, details any) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
		Details: details,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// 預定義錯誤代碼
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeInvalidQuery    = "INVALID_QUERY"     // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeConflict        = "CONFLICT"          // 409
	ErrCodeSchemaError     = "SCHEMA_ERROR"      // 422
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeExportFailed       = "EXPORT_FAILED"       // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// 預定義錯誤
var (
	ErrInvalidRequest    = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrInvalidQuery      = NewError(ErrCodeInvalidQuery, "invalid query", http.StatusBadRequest, nil)
	ErrNotFound          = NewError(ErrCodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrQueueFull         = NewError(ErrCodeTooManyRequests, "export queue is full", http.StatusTooManyRequests, nil)
	ErrJobNotFinished    = NewError(ErrCodeConflict, "export job has not finished", http.StatusConflict, nil)
	ErrSchema            = NewError(ErrCodeSchemaError, "record collection is missing required columns", http.StatusUnprocessableEntity, nil)
	ErrInternalError     = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrExportFailed      = NewError(ErrCodeExportFailed, "snapshot export failed", http.StatusInternalServerError, nil)
	ErrSourceUnavailable = NewError(ErrCodeServiceUnavailable, "record source unavailable", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout    = NewError(ErrCodeGatewayTimeout, "request timeout", http.StatusGatewayTimeout, nil)
)
