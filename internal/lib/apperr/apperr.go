// Package apperr описывает виды доменных ошибок сервиса на основе кодов samber/oops
// и их отображение на HTTP-статусы и имена ошибок в ответе.
package apperr

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/samber/oops"
)

// Коды доменных ошибок.
const (
	CodeValidation   = "VALIDATION"
	CodeDuplicate    = "DUPLICATE"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL"
)

// InternalMessage сообщение, которое получает клиент при неожиданной ошибке.
const InternalMessage = "Internal server error"

type kind struct {
	status int
	name   string
}

var kinds = map[string]kind{
	CodeValidation:   {status: http.StatusBadRequest, name: "ValidationError"},
	CodeDuplicate:    {status: http.StatusBadRequest, name: "DuplicateResource"},
	CodeNotFound:     {status: http.StatusNotFound, name: "NotFound"},
	CodeUnauthorized: {status: http.StatusUnauthorized, name: "Unauthorized"},
	CodeForbidden:    {status: http.StatusForbidden, name: "Forbidden"},
	CodeInternal:     {status: http.StatusInternalServerError, name: "InternalError"},
}

// Validation ошибка некорректных входных данных.
func Validation(format string, args ...any) error {
	return oops.Code(CodeValidation).Errorf(format, args...)
}

// Duplicate нарушение уникальности.
func Duplicate(format string, args ...any) error {
	return oops.Code(CodeDuplicate).Errorf(format, args...)
}

// NotFound сущность не найдена.
func NotFound(format string, args ...any) error {
	return oops.Code(CodeNotFound).Errorf(format, args...)
}

// Unauthorized отсутствует или не прошёл проверку токен, неверные учётные данные.
func Unauthorized(format string, args ...any) error {
	return oops.Code(CodeUnauthorized).Errorf(format, args...)
}

// Forbidden роль пользователя не допускается к операции.
func Forbidden(format string, args ...any) error {
	return oops.Code(CodeForbidden).Errorf(format, args...)
}

// Internal оборачивает неожиданную ошибку. op попадает в контекст для логов.
func Internal(op string, err error) error {
	return oops.Code(CodeInternal).With("op", op).Wrap(err)
}

// CodeOf возвращает код ошибки. Ошибки без кода считаются внутренними.
func CodeOf(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return CodeInternal
	}
	code := fmt.Sprint(oopsErr.Code())
	if _, known := kinds[code]; !known {
		return CodeInternal
	}
	return code
}

// Is сообщает, имеет ли ошибка указанный код.
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// Status HTTP-статус для кода ошибки.
func Status(code string) int {
	if k, ok := kinds[code]; ok {
		return k.status
	}
	return http.StatusInternalServerError
}

// Name имя вида ошибки для поля error в ответе.
func Name(code string) string {
	if k, ok := kinds[code]; ok {
		return k.name
	}
	return kinds[CodeInternal].name
}

// Message текст ошибки для клиента. Детали внутренних ошибок не раскрываются.
func Message(err error) string {
	if CodeOf(err) == CodeInternal {
		return InternalMessage
	}
	oopsErr, _ := oops.AsOops(err)
	return oopsErr.Error()
}

// Log пишет ошибку в лог; для oops-ошибок добавляются код и контекст.
func Log(logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.Error(msg, slog.String("error", err.Error()))
		return
	}
	attrs := []any{slog.String("error", err.Error())}
	attrs = append(attrs, slog.String("code", CodeOf(err)))
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, slog.Any("context", ctx))
	}
	logger.Error(msg, attrs...)
}
