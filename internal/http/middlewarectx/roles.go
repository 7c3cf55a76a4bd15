package middlewarectx

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
)

// RequireRoles пропускает запрос, если роль личности входит в roles.
// Пустой список ролей не ограничивает доступ.
func RequireRoles(log *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(roles) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			log := log.With(
				slog.String("op", "middlewarectx.RequireRoles"),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			identity, ok := IdentityFrom(r.Context())
			if !ok {
				response.WriteError(w, r, log, apperr.Unauthorized("User is not authenticated"))
				return
			}
			if !slices.Contains(roles, identity.Role) {
				response.WriteError(w, r, log, apperr.Forbidden("Access denied: insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
