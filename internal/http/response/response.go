// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: ответы с ошибкой в едином
// формате, сообщения валидации и декодирование тела запроса.
package response

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
)

// TimestampLayout формат поля timestamp: ISO‑8601 в UTC с миллисекундами.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse единый формат ответа с ошибкой.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode" example:"404"`
	Timestamp  string `json:"timestamp" example:"2025-06-05T10:00:00.000Z"`
	Path       string `json:"path" example:"/api/v1/clinics/42"`
	Message    string `json:"message" example:"Clinic with ID 42 not found"`
	Error      string `json:"error" example:"NotFound"`
}

// MessageResponse ответ с текстовым сообщением.
type MessageResponse struct {
	Message string `json:"message" example:"Logged out successfully"`
}

// Message возвращает MessageResponse.
func Message(msg string) MessageResponse {
	return MessageResponse{Message: msg}
}

// now подменяется в тестах.
var now = time.Now

// NewError формирует тело ответа с ошибкой.
func NewError(r *http.Request, status int, name, msg string) ErrorResponse {
	return ErrorResponse{
		StatusCode: status,
		Timestamp:  now().UTC().Format(TimestampLayout),
		Path:       r.URL.Path,
		Message:    msg,
		Error:      name,
	}
}

// WriteStatus пишет ответ с ошибкой с явным статусом и именем.
func WriteStatus(w http.ResponseWriter, r *http.Request, status int, name, msg string) {
	render.Status(r, status)
	render.JSON(w, r, NewError(r, status, name, msg))
}

// WriteError пишет ответ по виду ошибки. Внутренние ошибки логируются,
// клиент получает только общее сообщение.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	code := apperr.CodeOf(err)
	if code == apperr.CodeInternal {
		apperr.Log(log, "request failed", err)
	} else {
		log.Info("request rejected", slog.String("code", code), slog.String("reason", apperr.Message(err)))
	}
	WriteStatus(w, r, apperr.Status(code), apperr.Name(code), apperr.Message(err))
}

// ValidationError формирует текст на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) string {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters long", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters long", err.Field(), err.Param()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must contain only positive ids", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		case "e164":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a phone number in international format", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return strings.Join(errsMsgs, ", ")
}
