package errors

import (
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenNotYetValid     = fmt.Errorf("токен ещё не активен")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")
	ErrInvalidUserID           = fmt.Errorf("недопустимый UserID")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// Коды причин для ошибок валидации бронирования. Клиент различает их,
// чтобы показать правильную подсказку ("выберите другой слот" и т.п.).
const (
	ReasonInvalidInterval  = "invalid_interval"
	ReasonStartInPast      = "start_in_past"
	ReasonBelowMinDuration = "below_min_duration"
	ReasonOverMaxDuration  = "over_max_duration"
	ReasonBookingConflict  = "booking_conflict"
)

// HttpError - ошибка с HTTP-статусом, которую поймет utils.ErrorResponse.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
	Context map[string]interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// NewValidationError - 400 с кодом причины (интервал, длительность и т.д.).
func NewValidationError(reason, message string) *HttpError {
	return &HttpError{
		Code:    http.StatusBadRequest,
		Message: message,
		Details: map[string]string{"reason": reason},
	}
}

// NewConflictError - 409: оборудование занято в запрошенном интервале.
// Отдельный статус, чтобы клиент мог предложить другой слот.
func NewConflictError(message string) *HttpError {
	return &HttpError{
		Code:    http.StatusConflict,
		Message: message,
		Details: map[string]string{"reason": ReasonBookingConflict},
	}
}

func NewForbiddenError(message string) *HttpError {
	return &HttpError{Code: http.StatusForbidden, Message: message, Err: ErrForbidden}
}

func NewNotFoundError(message string) *HttpError {
	return &HttpError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
