// Package sender собирает отправщик писем: читает напоминания из RabbitMQ
// и отправляет их читателям по SMTP.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/magabrotheeeer/library-management/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/library-management/internal/services/sender"
)

// App приложение отправщика писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New подключается к RabbitMQ и объявляет очереди напоминаний.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger = logger.With(slog.String("service", "sender"))
	logger.Info("starting sender", slog.String("env", cfg.Env), slog.String("smtp_host", cfg.SMTPHost))

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.LoanQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewService(transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителей обеих очередей и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.QueueDueSoon, a.senderService.SendDueSoon)
	if err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", rabbitmq.QueueDueSoon), sl.Err(err))
		a.close()
		return err
	}

	err = rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.QueueOverdue, a.senderService.SendOverdue)
	if err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", rabbitmq.QueueOverdue), sl.Err(err))
		a.close()
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
