// Package mailer приложение, которое читает очередь писем восстановления
// пароля и отправляет их через SMTP.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/clinic-api/internal/config"
	"github.com/magabrotheeeer/clinic-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/clinic-api/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-api/internal/lib/smtp"
	"github.com/magabrotheeeer/clinic-api/internal/services/mail"
)

// App потребитель очереди mail.recovery.
type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	sender *mail.SMTPSender
	logger *slog.Logger
}

// New подключается к RabbitMQ и объявляет очереди писем.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "mailer.New"

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetMailQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		conn:   conn,
		ch:     ch,
		sender: mail.NewSMTPSender(logger, smtp.NewTransport(cfg.Mail, logger)),
		logger: logger,
	}, nil
}

// Run обрабатывает сообщения до отмены ctx и дожидается текущих отправок.
func (a *App) Run(ctx context.Context) error {
	done, err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.RecoveryQueue, a.sender.HandleRecoveryMessage)
	if err != nil {
		a.logger.Error("failed to start recovery mail consumer", sl.Err(err))
		return err
	}

	<-done
	a.logger.Info("mailer shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
