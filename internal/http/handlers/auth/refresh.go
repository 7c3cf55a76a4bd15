package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
)

// RefreshHandler выпускает новую пару токенов по refresh cookie.
type RefreshHandler struct {
	log     *slog.Logger
	service Service
	cookie  CookieOptions
}

// NewRefresh создает RefreshHandler.
func NewRefresh(log *slog.Logger, service Service, cookie CookieOptions) *RefreshHandler {
	return &RefreshHandler{log: log, service: service, cookie: cookie}
}

// ServeHTTP godoc
// @Summary Обновление сессии
// @Description Проверяет refresh токен из cookie refresh_Token и ротирует его.
// @Tags Auth
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 401 {object} response.ErrorResponse "Refresh токен отсутствует или недействителен"
// @Router /auth/refresh [post]
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var token string
	if c, err := r.Cookie(RefreshCookie); err == nil {
		token = c.Value
	}

	session, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	setRefreshCookie(w, h.cookie, session.RefreshToken)
	render.JSON(w, r, newSessionResponse(session))
}
