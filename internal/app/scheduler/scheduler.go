// Package scheduler собирает планировщик напоминаний о сроках возврата.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/magabrotheeeer/library-management/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	schedulerservice "github.com/magabrotheeeer/library-management/internal/services/scheduler"
	"github.com/magabrotheeeer/library-management/internal/storage/repository"
)

const (
	dbReadyAttempts = 10
	dbReadyDelay    = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.Service
	conn             *amqp.Connection
	ch               *amqp.Channel
	db               *repository.Storage
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	var err error
	for range dbReadyAttempts {
		if err = db.CheckDatabaseReady(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dbReadyDelay):
		}
	}
	return fmt.Errorf("database not ready after retries: %w", err)
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	logger = logger.With(slog.String("service", "scheduler"))
	logger.Info("starting scheduler",
		slog.String("env", cfg.Env),
		slog.Duration("interval", cfg.SchedulerInterval),
	)

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.LoanQueues())
	if err != nil {
		closeResources(nil, conn, nil, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, nil, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		closeResources(ch, conn, db, logger)
		return nil, err
	}

	publisher := rabbitmq.NewPublisher(ch, rabbitmq.NotificationsExchange)
	schedulerService := schedulerservice.NewService(db, publisher, logger, cfg.SchedulerInterval, cfg.FinePerDay)

	return &App{
		schedulerService: schedulerService,
		conn:             conn,
		ch:               ch,
		db:               db,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, db *repository.Storage, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("failed to close storage", sl.Err(err))
		}
	}
}

// Run запускает планировщик и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)

	a.logger.Info("shutting down scheduler service")
	closeResources(a.ch, a.conn, a.db, a.logger)
	return nil
}
