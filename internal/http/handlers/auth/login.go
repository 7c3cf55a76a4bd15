package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
)

// LoginRequest учетные данные пользователя.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"john@example.com"`
	Password string `json:"password" validate:"required" example:"Secret123"`
}

// LoginHandler обрабатывает вход пользователя.
type LoginHandler struct {
	log      *slog.Logger
	service  Service
	cookie   CookieOptions
	validate *validator.Validate
}

// NewLogin создает LoginHandler.
func NewLogin(log *slog.Logger, service Service, cookie CookieOptions) *LoginHandler {
	return &LoginHandler{
		log:      log,
		service:  service,
		cookie:   cookie,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Проверяет email и пароль, возвращает access токен и выставляет refresh cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Учетные данные пользователя"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req LoginRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("login success", slog.Int64("user_id", session.User.ID))
	setRefreshCookie(w, h.cookie, session.RefreshToken)
	render.JSON(w, r, newSessionResponse(session))
}
