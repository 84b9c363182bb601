// Package auth собирает gRPC-сервис авторизации.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"

	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/magabrotheeeer/library-management/internal/grpc/authrpc"
	"github.com/magabrotheeeer/library-management/internal/grpc/server"
	"github.com/magabrotheeeer/library-management/internal/lib/jwt"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/migrations"
	authservice "github.com/magabrotheeeer/library-management/internal/services/auth"
	"github.com/magabrotheeeer/library-management/internal/storage/repository"
)

// App gRPC-приложение авторизации.
type App struct {
	grpcServer *grpc.Server
	listener   net.Listener
	logger     *slog.Logger
	db         *repository.Storage
}

// New подключает хранилище, создаёт администратора из конфигурации
// и регистрирует AuthService на gRPC-сервере.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.auth.New"
	logger = logger.With(slog.String("service", "auth"))
	logger.Info("starting auth service", slog.String("env", cfg.Env))

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewService(db, jwtMaker)

	if cfg.AdminEmail != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if created {
			logger.Info("bootstrap admin created", slog.String("email", cfg.AdminEmail))
		}
	}

	lis, err := net.Listen("tcp", cfg.GRPCAuthAddress)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grpcServer := grpc.NewServer()
	authrpc.RegisterAuthServer(grpcServer, server.NewAuthServer(authService, logger))

	return &App{
		grpcServer: grpcServer,
		listener:   lis,
		logger:     logger,
		db:         db,
	}, nil
}

// Run обслуживает gRPC-запросы до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("Auth gRPC service listening on", slog.String("address", a.listener.Addr().String()))
		errCh <- a.grpcServer.Serve(a.listener)
	}()

	defer func() {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}()

	select {
	case <-ctx.Done():
		a.grpcServer.GracefulStop()
		a.logger.Info("auth service stopped gracefully")
		return nil
	case err := <-errCh:
		return err
	}
}
