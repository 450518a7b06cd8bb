package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Контекст запроса
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")
	ErrRoleNotFoundInContext   = fmt.Errorf("роль не найдена в контексте запроса")
	ErrInvalidUserID           = fmt.Errorf("недопустимый UserID")

	// Токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrEmptyAuthHeader      = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader    = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials   = fmt.Errorf("неверные учётные данные")
)

// HttpError — ошибка уровня приложения с HTTP-кодом.
// Message показывается клиенту, Err уходит только в лог.
type HttpError struct {
	Code    int
	Message string
	Err     error
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err}
}

// Таксономия доменных ошибок: NotFound, Forbidden, Conflict,
// ValidationError, Transient.

func NewNotFoundError(message string) *HttpError {
	return &HttpError{Code: http.StatusNotFound, Message: message}
}

func NewForbiddenError(message string) *HttpError {
	return &HttpError{Code: http.StatusForbidden, Message: message}
}

func NewConflictError(message string) *HttpError {
	return &HttpError{Code: http.StatusConflict, Message: message}
}

func NewValidationError(format string, args ...interface{}) *HttpError {
	return &HttpError{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NewTransientError(message string, err error) *HttpError {
	return &HttpError{Code: http.StatusServiceUnavailable, Message: message, Err: err}
}

func IsNotFound(err error) bool {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code == http.StatusNotFound
	}
	return false
}

func IsConflict(err error) bool {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code == http.StatusConflict
	}
	return false
}

func IsForbidden(err error) bool {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code == http.StatusForbidden
	}
	return false
}
