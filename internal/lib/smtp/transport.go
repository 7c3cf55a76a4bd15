// Package smtp отправка писем через net/smtp с STARTTLS или TLS при подключении.
package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/magabrotheeeer/clinic-api/internal/config"
	"github.com/magabrotheeeer/clinic-api/internal/lib/sl"
)

const dialTimeout = 10 * time.Second

// Transport реализует SMTP транспорт для отправки писем.
type Transport struct {
	cfg config.Mail
	log *slog.Logger
}

// smtpClientWrapper обертка для *smtp.Client, реализующая интерфейс Client.
type smtpClientWrapper struct {
	client *smtp.Client
}

func (w *smtpClientWrapper) Mail(from string) error {
	return w.client.Mail(from)
}

func (w *smtpClientWrapper) Rcpt(to string) error {
	return w.client.Rcpt(to)
}

func (w *smtpClientWrapper) Data() (io.WriteCloser, error) {
	return w.client.Data()
}

func (w *smtpClientWrapper) Quit() error {
	return w.client.Quit()
}

func (w *smtpClientWrapper) Close() error {
	return w.client.Close()
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.Mail, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

func (t *Transport) address() string {
	return net.JoinHostPort(t.cfg.SMTPHost, strconv.Itoa(t.cfg.SMTPPort))
}

func (t *Transport) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
}

// Connect устанавливает соединение с SMTP сервером.
// Без StartTLS TLS поднимается сразу при подключении (порт 465).
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Connect"

	var conn net.Conn
	var err error
	dialer := &net.Dialer{Timeout: dialTimeout}
	if t.cfg.StartTLS {
		conn, err = dialer.Dial("tcp", t.address())
	} else {
		conn, err = tls.DialWithDialer(dialer, "tcp", t.address(), t.tlsConfig())
	}
	if err != nil {
		t.log.Error("failed to dial SMTP server", slog.String("addr", t.address()), sl.Err(err))
		return nil, fmt.Errorf("%s: failed to dial SMTP server: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		t.log.Error("failed to create SMTP client", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			t.log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: failed to create SMTP client: %w", op, err)
	}

	if t.cfg.StartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			t.log.Error("SMTP server does not support STARTTLS")
			t.closeClient(client)
			return nil, fmt.Errorf("%s: smtp server does not support STARTTLS", op)
		}
		if err = client.StartTLS(t.tlsConfig()); err != nil {
			t.log.Error("failed to start TLS", sl.Err(err))
			t.closeClient(client)
			return nil, fmt.Errorf("%s: failed to start TLS: %w", op, err)
		}
	}

	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err = client.Auth(auth); err != nil {
		t.log.Error("smtp auth failed", sl.Err(err))
		t.closeClient(client)
		return nil, fmt.Errorf("%s: smtp auth failed: %w", op, err)
	}

	return &smtpClientWrapper{client: client}, nil
}

func (t *Transport) closeClient(client *smtp.Client) {
	if closeErr := client.Close(); closeErr != nil {
		t.log.Error("failed to close client", sl.Err(closeErr))
	}
}

// GetSMTPUser возвращает имя пользователя SMTP.
func (t *Transport) GetSMTPUser() string {
	return t.cfg.SMTPUser
}
