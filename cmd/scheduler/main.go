// Package main содержит точку входа планировщика напоминаний.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/library-management/internal/app/scheduler"
	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("scheduler failed", sl.Err(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	app, err := scheduler.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
