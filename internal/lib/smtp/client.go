package smtp

import "io"

// Client подмножество *smtp.Client, которое нужно для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer открывает сессию с почтовым сервером. Адрес отправителя
// совпадает с логином SMTP.
type Dialer interface {
	Connect() (Client, error)
	GetSMTPUser() string
}

var _ Dialer = (*Transport)(nil)
