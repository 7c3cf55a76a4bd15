// Package auth реализует HTTP-обработчики регистрации, входа, обновления сессии,
// выхода и восстановления пароля.
//
// Access токен возвращается в теле ответа, refresh токен выставляется
// в HTTP-only cookie refresh_Token. Бизнес-логика делегируется Service.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/magabrotheeeer/clinic-api/internal/models"
	authservice "github.com/magabrotheeeer/clinic-api/internal/services/auth"
)

// RefreshCookie имя cookie с refresh токеном.
const RefreshCookie = "refresh_Token"

// Service описывает бизнес-логику аутентификации.
type Service interface {
	Register(ctx context.Context, name, email, password string) (authservice.Session, error)
	Login(ctx context.Context, email, password string) (authservice.Session, error)
	Refresh(ctx context.Context, refreshToken string) (authservice.Session, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) (models.Identity, error)
}

// CookieOptions параметры cookie с refresh токеном.
type CookieOptions struct {
	MaxAge time.Duration
	// Insecure снимает флаг Secure для локальной разработки по HTTP.
	Insecure bool
}

// SessionResponse тело ответа регистрации, входа и обновления.
type SessionResponse struct {
	AccessToken string          `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIs..."`
	User        models.Identity `json:"user"`
}

// UserResponse ответ с сообщением и данными пользователя.
type UserResponse struct {
	Message string          `json:"message" example:"Password successfully changed"`
	User    models.Identity `json:"user"`
}

func newSessionResponse(s authservice.Session) SessionResponse {
	return SessionResponse{AccessToken: s.AccessToken, User: s.User}
}

func setRefreshCookie(w http.ResponseWriter, opts CookieOptions, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   !opts.Insecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !opts.Insecure,
		SameSite: http.SameSiteLaxMode,
	})
}
