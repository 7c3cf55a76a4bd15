// Package health обработчик проверки готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/clinic-api/internal/lib/sl"
)

// Checker проверяет доступность зависимости.
type Checker interface {
	Ping(ctx context.Context) error
}

// Handler отвечает 200, если все зависимости доступны, иначе 503.
type Handler struct {
	log      *slog.Logger
	checkers map[string]Checker
}

// Response состояние сервиса и его зависимостей.
type Response struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// New создает Handler с именованными проверками.
func New(log *slog.Logger, checkers map[string]Checker) *Handler {
	return &Handler{
		log:      log,
		checkers: checkers,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Ops
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /healthz [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := Response{Status: "ok", Checks: make(map[string]string, len(h.checkers))}
	for name, c := range h.checkers {
		if err := c.Ping(ctx); err != nil {
			h.log.Warn("health check failed", slog.String("op", op), slog.String("check", name), sl.Err(err))
			resp.Status = "unavailable"
			resp.Checks[name] = "down"
			continue
		}
		resp.Checks[name] = "up"
	}

	if resp.Status != "ok" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, resp)
}
