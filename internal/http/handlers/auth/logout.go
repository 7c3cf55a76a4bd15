package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
)

// LogoutHandler удаляет refresh cookie. Токены на сервере не отзываются.
type LogoutHandler struct {
	log    *slog.Logger
	cookie CookieOptions
}

// NewLogout создает LogoutHandler.
func NewLogout(log *slog.Logger, cookie CookieOptions) *LogoutHandler {
	return &LogoutHandler{log: log, cookie: cookie}
}

// ServeHTTP godoc
// @Summary Выход
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.MessageResponse
// @Failure 401 {object} response.ErrorResponse "Нет access токена"
// @Router /auth/logout [delete]
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.log.Info("logout", slog.String("request_id", middleware.GetReqID(r.Context())))
	clearRefreshCookie(w, h.cookie)
	render.JSON(w, r, response.Message("Logged out successfully"))
}
