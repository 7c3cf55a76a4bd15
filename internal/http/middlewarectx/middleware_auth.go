// Package middlewarectx содержит HTTP middleware: проверку access токена,
// проверку ролей, ограничение частоты запросов и метрики.
//
// Authenticate проверяет JWT из заголовка Authorization и кладёт в контекст
// models.Identity. RequireRoles использует эту личность и не разбирает токен повторно.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
	"github.com/magabrotheeeer/clinic-api/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-api/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey ключ личности пользователя в контексте.
const IdentityKey Key = "identity"

// TokenVerifier проверяет access токен.
type TokenVerifier interface {
	VerifyAccessToken(token string) (models.Identity, error)
}

// WithIdentity кладёт личность в контекст.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IdentityFrom достаёт личность из контекста.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(models.Identity)
	return identity, ok
}

// Authenticate возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет личность в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func Authenticate(verifier TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || scheme != "Bearer" || token == "" {
				response.WriteError(w, r, log, apperr.Unauthorized("Missing or invalid authorization header"))
				return
			}

			identity, err := verifier.VerifyAccessToken(token)
			if err != nil {
				log.Debug("access token rejected", sl.Err(err))
				response.WriteError(w, r, log, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
