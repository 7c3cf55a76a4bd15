// Package clinicapi собирает HTTP-приложение справочника клиник: маршруты,
// middleware и зависимости.
package clinicapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	authhandler "github.com/magabrotheeeer/clinic-api/internal/http/handlers/auth"
	clinichandler "github.com/magabrotheeeer/clinic-api/internal/http/handlers/clinic"
	doctorhandler "github.com/magabrotheeeer/clinic-api/internal/http/handlers/doctor"
	favorhandler "github.com/magabrotheeeer/clinic-api/internal/http/handlers/favor"
	"github.com/magabrotheeeer/clinic-api/internal/http/handlers/health"
	"github.com/magabrotheeeer/clinic-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/clinic-api/internal/http/response"
	"github.com/magabrotheeeer/clinic-api/internal/models"
)

// Dependencies сервисы и инфраструктура, из которых строится роутер.
type Dependencies struct {
	Logger   *slog.Logger
	Auth     authhandler.Service
	Clinics  clinichandler.Service
	Doctors  doctorhandler.Service
	Favors   favorhandler.Service
	Verifier middlewarectx.TokenVerifier
	Cookie   authhandler.CookieOptions
	// Limiter ограничивает /auth/*; nil отключает ограничение.
	Limiter  *middlewarectx.RateLimiter
	Metrics  *middlewarectx.Metrics
	Gatherer prometheus.Gatherer
	Health   map[string]health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Dependencies) {
	logger := d.Logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.WriteStatus(w, r, http.StatusNotFound, "NotFound", fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.WriteStatus(w, r, http.StatusMethodNotAllowed, "MethodNotAllowed", fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
	})

	authenticate := middlewarectx.Authenticate(d.Verifier, logger)
	adminOnly := middlewarectx.RequireRoles(logger, models.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки аутентификации
		r.Route("/auth", func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(d.Limiter.Middleware(logger))
			}
			r.Post("/register", authhandler.NewRegister(logger, d.Auth, d.Cookie).ServeHTTP)
			r.Post("/login", authhandler.NewLogin(logger, d.Auth, d.Cookie).ServeHTTP)
			r.Post("/refresh", authhandler.NewRefresh(logger, d.Auth, d.Cookie).ServeHTTP)
			r.Post("/forgot-password", authhandler.NewForgotPassword(logger, d.Auth).ServeHTTP)
			r.Patch("/reset-password", authhandler.NewResetPassword(logger, d.Auth).ServeHTTP)
			r.With(authenticate).Delete("/logout", authhandler.NewLogout(logger, d.Cookie).ServeHTTP)
		})

		// Справочник: чтение для любой роли, изменение только для admin
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			clinics := clinichandler.New(logger, d.Clinics)
			r.Route("/clinics", func(r chi.Router) {
				r.Get("/", clinics.List)
				r.Get("/{id}", clinics.Get)
				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/", clinics.Create)
					r.Put("/{id}", clinics.Update)
					r.Delete("/{id}", clinics.Delete)
					r.Post("/{id}/doctors", clinics.AddDoctors)
					r.Delete("/{id}/doctors/{doctorId}", clinics.RemoveDoctor)
				})
			})

			doctors := doctorhandler.New(logger, d.Doctors)
			r.Route("/doctors", func(r chi.Router) {
				r.Get("/", doctors.List)
				r.Get("/{id}", doctors.Get)
				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/", doctors.Create)
					r.Put("/{id}", doctors.Update)
					r.Delete("/{id}", doctors.Delete)
					r.Post("/{id}/favors", doctors.AddFavors)
					r.Put("/{id}/favors", doctors.ReplaceFavors)
					r.Delete("/{id}/favors/{favorId}", doctors.RemoveFavor)
				})
			})

			favors := favorhandler.New(logger, d.Favors)
			r.Route("/favors", func(r chi.Router) {
				r.Get("/", favors.List)
				r.Get("/{id}", favors.Get)
				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Post("/", favors.Create)
					r.Put("/{id}", favors.Update)
					r.Delete("/{id}", favors.Delete)
				})
			})
		})
	})

	r.Get("/healthz", health.New(logger, d.Health).ServeHTTP)
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
