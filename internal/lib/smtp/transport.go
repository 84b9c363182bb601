// Package smtp отправляет письма через SMTP-сервер с STARTTLS и PLAIN-авторизацией.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
)

// Client — часть *smtp.Client, используемая при отправке письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Transport устанавливает соединения с SMTP-сервером.
type Transport struct {
	cfg    config.SMTP
	log    *slog.Logger
	dialer net.Dialer
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// From возвращает адрес отправителя.
func (t *Transport) From() string {
	return t.cfg.SMTPUser
}

// Connect устанавливает соединение, включает TLS и авторизуется.
func (t *Transport) Connect(ctx context.Context) (Client, error) {
	const op = "smtp.Connect"
	log := t.log.With(sl.Op(op), slog.String("host", t.cfg.SMTPHost))

	conn, err := t.dialer.DialContext(ctx, "tcp", net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort))
	if err != nil {
		log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		log.Error("failed to create SMTP client", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: new client: %w", op, err)
	}

	fail := func(msg string, err error) (Client, error) {
		log.Error(msg, sl.Err(err))
		if closeErr := client.Close(); closeErr != nil {
			log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %s: %w", op, msg, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fail("starttls", fmt.Errorf("smtp server does not support STARTTLS"))
	}
	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fail("failed to start TLS", err)
	}

	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fail("smtp auth failed", err)
	}

	return client, nil
}
