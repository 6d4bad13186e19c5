package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeInvalidState        ErrorCode = "INVALID_STATE"
	ErrCodeValidation          ErrorCode = "VALIDATION_ERROR"
	ErrCodeCollaboratorTimeout ErrorCode = "COLLABORATOR_TIMEOUT"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Newf собирает сообщение по шаблону.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeInvalidState:
		return http.StatusConflict
	case ErrCodeCollaboratorTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или ErrCodeInternal для неизвестных ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HTTPStatusOf возвращает HTTP статус для ошибки.
func HTTPStatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// MessageOf возвращает человекочитаемое сообщение без внутренних подробностей.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "внутренняя ошибка сервера"
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsInvalidState(err error) bool {
	return CodeOf(err) == ErrCodeInvalidState
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsCollaboratorTimeout(err error) bool {
	return CodeOf(err) == ErrCodeCollaboratorTimeout
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

var (
	ErrDisputeNotFound   = New(ErrCodeNotFound, "спор не найден")
	ErrReviewNotFound    = New(ErrCodeNotFound, "отзыв не найден")
	ErrSessionNotFound   = New(ErrCodeNotFound, "сессия медиации не найдена")
	ErrEvidenceNotFound  = New(ErrCodeNotFound, "доказательство не найдено")
	ErrScoringTimeout    = New(ErrCodeCollaboratorTimeout, "сервис оценки не ответил вовремя")
	ErrUnauthorized      = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden         = New(ErrCodeForbidden, "недостаточно прав")
	ErrModerationMissing = New(ErrCodeInvalidState, "у отзыва отсутствует статус модерации")
)
