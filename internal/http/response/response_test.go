package response

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestWriteError(t *testing.T) {
	fixed := time.Date(2025, 6, 5, 10, 0, 0, 123_000_000, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantName   string
		wantMsg    string
	}{
		{"validation", apperr.Validation("bad input"), http.StatusBadRequest, "ValidationError", "bad input"},
		{"duplicate", apperr.Duplicate("taken"), http.StatusBadRequest, "DuplicateResource", "taken"},
		{"not found", apperr.NotFound("Clinic with ID 1 not found"), http.StatusNotFound, "NotFound", "Clinic with ID 1 not found"},
		{"unauthorized", apperr.Unauthorized("no"), http.StatusUnauthorized, "Unauthorized", "no"},
		{"forbidden", apperr.Forbidden("admins only"), http.StatusForbidden, "Forbidden", "admins only"},
		{"internal hides details", apperr.Internal("op", errors.New("pq: password=secret")), http.StatusInternalServerError, "InternalError", apperr.InternalMessage},
		{"plain error is internal", errors.New("boom"), http.StatusInternalServerError, "InternalError", apperr.InternalMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/clinics/1?x=1", nil)
			rr := httptest.NewRecorder()

			WriteError(rr, req, newNoopLogger(), tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decodeError(t, rr)
			assert.Equal(t, ErrorResponse{
				StatusCode: tt.wantStatus,
				Timestamp:  "2025-06-05T10:00:00.123Z",
				Path:       "/api/v1/clinics/1",
				Message:    tt.wantMsg,
				Error:      tt.wantName,
			}, body)
		})
	}
}

type payload struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	IDs      []int64 `json:"doctorIds" validate:"dive,gt=0"`
}

func TestDecode(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"email":"a@x.com","password":"Secret123","doctorIds":[1,2]}`},
		{name: "empty body", body: ``, wantErr: "request body is empty"},
		{name: "malformed", body: `{"email":`, wantErr: "failed to decode request"},
		{name: "missing fields", body: `{}`, wantErr: "field email is a required field, field password is a required field"},
		{name: "bad email short password", body: `{"email":"nope","password":"123"}`, wantErr: "field email must be a valid email, field password must be at least 6 characters long"},
		{name: "non positive id", body: `{"email":"a@x.com","password":"Secret123","doctorIds":[0]}`, wantErr: "must contain only positive ids"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			var dst payload
			err := Decode(req, v, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "a@x.com", dst.Email)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.CodeValidation))
			assert.Contains(t, apperr.Message(err), tt.wantErr)
		})
	}
}

func TestIDParam(t *testing.T) {
	for raw, want := range map[string]int64{"1": 1, "42": 42, "0": 0, "-3": 0, "abc": 0} {
		t.Run(raw, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/clinics/"+raw, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", raw)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			id, err := IDParam(req, "id")
			if want == 0 {
				assert.True(t, apperr.Is(err, apperr.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, id)
		})
	}
}

func TestSortParam(t *testing.T) {
	for q, wantErr := range map[string]bool{"": false, "asc": false, "DESC": false, "up": true} {
		req := httptest.NewRequest(http.MethodGet, "/clinics?sort="+q, nil)
		got, err := SortParam(req, "sort")
		if wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(q), got)
	}
}
