package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
)

// ForgotPasswordRequest запрос письма восстановления.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email" example:"john@example.com"`
}

// ResetPasswordRequest новый пароль и токен из письма.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required" example:"NewSecret123"`
}

// ForgotPasswordHandler отправляет письмо со ссылкой сброса пароля.
type ForgotPasswordHandler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewForgotPassword создает ForgotPasswordHandler.
func NewForgotPassword(log *slog.Logger, service Service) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{log: log, service: service, validate: response.NewValidator()}
}

// ServeHTTP godoc
// @Summary Восстановление пароля
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Email пользователя"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка отправки письма"
// @Router /auth/forgot-password [post]
func (h *ForgotPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req ForgotPasswordRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.Message("Recovery email sent"))
}

// ResetPasswordHandler устанавливает новый пароль по токену восстановления.
type ResetPasswordHandler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewResetPassword создает ResetPasswordHandler.
func NewResetPassword(log *slog.Logger, service Service) *ResetPasswordHandler {
	return &ResetPasswordHandler{log: log, service: service, validate: response.NewValidator()}
}

// ServeHTTP godoc
// @Summary Сброс пароля
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Токен и новый пароль"
// @Success 200 {object} UserResponse
// @Failure 400 {object} response.ErrorResponse "Пароль слишком короткий"
// @Failure 401 {object} response.ErrorResponse "Токен недействителен или уже использован"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /auth/reset-password [patch]
func (h *ResetPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req ResetPasswordRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	user, err := h.service.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("password changed", slog.Int64("user_id", user.ID))
	render.JSON(w, r, UserResponse{Message: "Password successfully changed", User: user})
}
