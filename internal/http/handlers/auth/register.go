package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
)

// RegisterRequest входные данные регистрации.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100" example:"John Doe"`
	Email    string `json:"email" validate:"required,email" example:"john@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"Secret123"`
}

// RegisterHandler обрабатывает регистрацию пользователя.
type RegisterHandler struct {
	log      *slog.Logger
	service  Service
	cookie   CookieOptions
	validate *validator.Validate
}

// NewRegister создает RegisterHandler.
func NewRegister(log *slog.Logger, service Service, cookie CookieOptions) *RegisterHandler {
	return &RegisterHandler{
		log:      log,
		service:  service,
		cookie:   cookie,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создает пользователя с ролью user, возвращает access токен и выставляет refresh cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Данные пользователя"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или email занят"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req RegisterRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	session, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("user registered", slog.Int64("user_id", session.User.ID))
	setRefreshCookie(w, h.cookie, session.RefreshToken)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, newSessionResponse(session))
}
