// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/library-management/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Status принимает значения "OK" или "Error".
// Error заполняется только при ошибке, Data только при успехе.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// Message — короткое текстовое подтверждение операции.
type Message struct {
	Message string `json:"message" example:"book removed"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// OKMessage возвращает успешный Response с текстовым сообщением.
func OKMessage(msg string) Response {
	return StatusOKWithData(Message{Message: msg})
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// FromError подбирает HTTP-статус и текст ответа для ошибки сервисного слоя.
// Неизвестные ошибки скрываются за "server error".
func FromError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, models.ErrAlreadyReturned):
		return http.StatusNotFound, Error("issued book record not found or already returned")
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, Error("not found")
	case errors.Is(err, models.ErrUnavailable):
		return http.StatusBadRequest, Error(models.ErrUnavailable.Error())
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, Error(models.ErrInvalidInput.Error())
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, Error("resource was modified concurrently, retry the request")
	case errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict, Error("user with this email already exists")
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error("invalid email or password")
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, Error("access denied")
	default:
		return http.StatusInternalServerError, Error("server error")
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than or equal to %s", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
