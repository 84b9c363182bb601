// Package library собирает HTTP API библиотеки: хранилище, кеш книг,
// клиент сервиса авторизации, сервисы предметной области и маршруты.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/library-management/internal/cache"
	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/magabrotheeeer/library-management/internal/grpc/client"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/migrations"
	bookservice "github.com/magabrotheeeer/library-management/internal/services/book"
	loanservice "github.com/magabrotheeeer/library-management/internal/services/loan"
	userservice "github.com/magabrotheeeer/library-management/internal/services/user"
	"github.com/magabrotheeeer/library-management/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-приложение библиотеки.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	authClient *client.AuthClient
}

// New подключает зависимости, применяет миграции и настраивает HTTP-сервер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.library.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authClient, err := client.NewAuthClient(cfg.GRPCAuthAddress)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	services := Services{
		Books:  bookservice.NewService(db, cacheRedis, logger, cfg.Library),
		Loans:  loanservice.NewService(db, cacheRedis, logger, cfg.Library),
		Users:  userservice.NewService(db, logger),
		Auth:   authClient,
		Health: db,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services, cfg.HTTPServer)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
		authClient: authClient,
	}, nil
}

// Run обслуживает запросы до отмены ctx и затем плавно останавливает сервер.
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
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.authClient.Close(); err != nil {
		a.logger.Error("failed to close auth client", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
