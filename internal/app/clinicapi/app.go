package clinicapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/clinic-api/internal/cache"
	"github.com/magabrotheeeer/clinic-api/internal/config"
	authhandler "github.com/magabrotheeeer/clinic-api/internal/http/handlers/auth"
	"github.com/magabrotheeeer/clinic-api/internal/http/handlers/health"
	"github.com/magabrotheeeer/clinic-api/internal/http/middlewarectx"
	"github.com/magabrotheeeer/clinic-api/internal/lib/password"
	"github.com/magabrotheeeer/clinic-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/clinic-api/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-api/internal/lib/smtp"
	"github.com/magabrotheeeer/clinic-api/internal/migrations"
	"github.com/magabrotheeeer/clinic-api/internal/services/auth"
	"github.com/magabrotheeeer/clinic-api/internal/services/clinic"
	"github.com/magabrotheeeer/clinic-api/internal/services/doctor"
	"github.com/magabrotheeeer/clinic-api/internal/services/favor"
	"github.com/magabrotheeeer/clinic-api/internal/services/mail"
	"github.com/magabrotheeeer/clinic-api/internal/services/tokens"
	"github.com/magabrotheeeer/clinic-api/internal/storage/repository"
)

const limiterIdle = 10 * time.Minute

// App HTTP-приложение справочника клиник.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

// New подключает хранилища, применяет миграции и собирает сервер.
// Ресурсы, открытые до ошибки, закрываются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "clinicapi.New"

	app := &App{logger: logger}
	ok := false
	defer func() {
		if !ok {
			app.close()
		}
	}()

	db, err := repository.New(ctx, cfg.StorageConnectionString())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.db = db
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.cache = cacheRedis

	tokenService, err := tokens.New(cfg.Tokens)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mailer, err := app.newMailSender(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authService := auth.New(logger, db, password.NewHasher(cfg.BcryptCost), tokenService, mailer, cacheRedis, auth.Options{
		ResetURL:            cfg.ResetURL,
		ConcealUnknownEmail: cfg.ConcealUnknownEmail,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, Dependencies{
		Logger:   logger,
		Auth:     authService,
		Clinics:  clinic.New(db, logger),
		Doctors:  doctor.New(db, logger),
		Favors:   favor.New(db, logger),
		Verifier: tokenService,
		Cookie: authhandler.CookieOptions{
			MaxAge:   cfg.RefreshTTL,
			Insecure: cfg.InsecureCookie,
		},
		Limiter:  middlewarectx.NewRateLimiter(ctx, cfg.RateLimit, cfg.RateBurst, limiterIdle),
		Metrics:  middlewarectx.NewMetrics(reg),
		Gatherer: reg,
		Health: map[string]health.Checker{
			"postgres": db,
			"redis":    cacheRedis,
		},
	})

	app.server = &http.Server{
		Addr:         cfg.ListenAddress(),
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ok = true
	return app, nil
}

// newMailSender выбирает доставку писем: напрямую через SMTP или через очередь RabbitMQ.
func (a *App) newMailSender(cfg *config.Config, logger *slog.Logger) (auth.MailSender, error) {
	if cfg.Delivery != "queue" {
		return mail.NewSMTPSender(logger, smtp.NewTransport(cfg.Mail, logger)), nil
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	a.amqp = conn
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetMailQueues())
	if err != nil {
		return nil, err
	}
	return mail.NewQueueSender(logger, ch), nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
	}
}
