package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode는 에러 코드 타입입니다
type ErrorCode string

const (
	// 일반 에러
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// 문서 저장소 에러
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeDuplicateKey       ErrorCode = "DUPLICATE_KEY"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"

	// 미들웨어 에러
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// AppError는 애플리케이션 에러입니다
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Err        error                  `json:"-"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Error는 error 인터페이스를 구현합니다
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap은 원본 에러를 반환합니다
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithMetadata는 메타데이터를 추가합니다
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithDetails는 상세 정보를 추가합니다
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// New는 새로운 AppError를 생성합니다
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatusFor(code),
	}
}

// Wrap은 기존 에러를 AppError로 래핑합니다.
// 이미 AppError인 경우 그대로 반환합니다.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatusFor(code),
		Err:        err,
	}
}

// Wrapf는 포맷팅된 메시지로 에러를 래핑합니다
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// DocumentNotFound는 id에 해당하는 문서가 없을 때의 에러를 생성합니다
func DocumentNotFound(id string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("document %q not found", id)).
		WithMetadata("id", id)
}

// DuplicateKey는 유니크 제약 위반 에러를 생성합니다
func DuplicateKey(err error) *AppError {
	return &AppError{
		Code:       ErrCodeDuplicateKey,
		Message:    "document violates a uniqueness constraint",
		HTTPStatus: httpStatusFor(ErrCodeDuplicateKey),
		Err:        err,
	}
}

// StoreUnavailable은 저장소에 연결할 수 없을 때의 에러를 생성합니다
func StoreUnavailable(err error) *AppError {
	return &AppError{
		Code:       ErrCodeServiceUnavailable,
		Message:    "document store is unavailable",
		HTTPStatus: httpStatusFor(ErrCodeServiceUnavailable),
		Err:        err,
	}
}

// Validation은 입력 검증 에러를 생성합니다
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Is는 에러가 특정 코드인지 확인합니다
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As는 표준 라이브러리의 errors.As를 그대로 노출합니다
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetCode는 에러 코드를 반환합니다
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// GetHTTPStatus는 에러의 HTTP 상태 코드를 반환합니다
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func httpStatusFor(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeDuplicateKey:
		return http.StatusConflict
	case ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 미리 정의된 에러들
var (
	ErrUnauthorized      = New(ErrCodeUnauthorized, "authentication required")
	ErrForbidden         = New(ErrCodeForbidden, "operation not permitted for this user")
	ErrRateLimitExceeded = New(ErrCodeRateLimitExceeded, "rate limit exceeded")
)
