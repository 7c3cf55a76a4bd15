// Package mail отправляет письма восстановления пароля: напрямую по SMTP
// или через очередь RabbitMQ, которую читает cmd/mailer.
package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/textproto"
	"strings"

	"github.com/magabrotheeeer/clinic-api/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/clinic-api/internal/lib/sl"
	"github.com/magabrotheeeer/clinic-api/internal/lib/smtp"
	"github.com/magabrotheeeer/clinic-api/internal/models"
)

const recoverySubject = "Password recovery"

// SMTPSender отправляет письмо в рамках вызова.
type SMTPSender struct {
	transport smtp.Dialer
	log       *slog.Logger
}

func NewSMTPSender(log *slog.Logger, transport smtp.Dialer) *SMTPSender {
	return &SMTPSender{transport: transport, log: log}
}

func (s *SMTPSender) SendRecovery(_ context.Context, msg models.RecoveryMail) error {
	const op = "mail.SendRecovery"
	if err := s.sendEmail(msg.Email, recoverySubject, recoveryBody(msg.Link)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// HandleRecoveryMessage обработчик сообщений очереди для cmd/mailer.
func (s *SMTPSender) HandleRecoveryMessage(body []byte) error {
	var msg models.RecoveryMail
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("Failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w: %w", rabbitmq.ErrDrop, err)
	}
	if msg.Email == "" || msg.Link == "" {
		s.log.Error("recovery message without recipient or link")
		return fmt.Errorf("incomplete recovery message: %w", rabbitmq.ErrDrop)
	}
	err := s.SendRecovery(context.Background(), msg)
	if permanent(err) {
		return fmt.Errorf("recipient rejected: %w: %w", rabbitmq.ErrDrop, err)
	}
	return err
}

// permanent ответы SMTP 5xx повторная отправка не исправит.
func permanent(err error) bool {
	var smtpErr *textproto.Error
	return errors.As(err, &smtpErr) && smtpErr.Code >= 500
}

func recoveryBody(link string) string {
	escaped := html.EscapeString(link)
	return "<p>You requested a password reset.</p>" +
		"<p>Follow the link to set a new password: <a href=\"" + escaped + "\">" + escaped + "</a></p>" +
		"<p>If you did not request it, ignore this email.</p>"
}

func (s *SMTPSender) sendEmail(to, subject, bodyHTML string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: \"Support\" <" + from + ">",
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		bodyHTML,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("Failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("Failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	if err := client.Rcpt(to); err != nil {
		s.log.Error("Failed to set RCPT TO", slog.String("recipient", to), sl.Err(err))
		return err
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("Failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.String("to", to))
	return nil
}

// QueueSender публикует письмо в очередь; отправкой занимается cmd/mailer.
type QueueSender struct {
	ch  rabbitmq.Publisher
	log *slog.Logger
}

func NewQueueSender(log *slog.Logger, ch rabbitmq.Publisher) *QueueSender {
	return &QueueSender{ch: ch, log: log}
}

func (q *QueueSender) SendRecovery(_ context.Context, msg models.RecoveryMail) error {
	const op = "mail.QueueSender.SendRecovery"
	if err := rabbitmq.PublishMessage(q.ch, rabbitmq.MailExchange, rabbitmq.RecoveryRoutingKey, msg); err != nil {
		q.log.Error("failed to publish recovery mail", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	q.log.Debug("recovery mail queued", slog.String("to", msg.Email))
	return nil
}
