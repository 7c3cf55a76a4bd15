package response

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
)

// NewValidator validator, который называет поля по json-тегам.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Decode читает JSON тело запроса в dst и проверяет его.
func Decode(r *http.Request, v *validator.Validate, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is empty")
		}
		return apperr.Validation("failed to decode request")
	}
	if err := v.Struct(dst); err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			return apperr.Validation("%s", ValidationError(validateErr))
		}
		return apperr.Validation("invalid request")
	}
	return nil
}

// IDParam разбирает положительный целый параметр пути.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Validation failed (numeric string is expected)")
	}
	return id, nil
}

// SortParam проверяет параметр направления сортировки; пустое значение допустимо.
func SortParam(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	switch strings.ToLower(v) {
	case "", "asc", "desc":
		return strings.ToLower(v), nil
	default:
		return "", apperr.Validation("query parameter %s must be asc or desc", name)
	}
}
