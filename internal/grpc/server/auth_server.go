// Package server реализует gRPC-сервер для авторизационного сервиса.
//
// AuthServer обрабатывает gRPC-запросы регистрации, входа и валидации JWT токенов.
// Логирует операции и ошибки, делегирует бизнес-логику сервису авторизации.
package server

import (
	"context"
	"log/slog"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/library-management/internal/grpc/authrpc"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// AuthService описывает бизнес-логику авторизации.
type AuthService interface {
	Register(ctx context.Context, name, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	ValidateToken(ctx context.Context, token string) (*models.Principal, error)
}

// AuthServer реализует gRPC-сервис авторизации
type AuthServer struct {
	authService AuthService
	log         *slog.Logger
}

var _ authrpc.AuthServer = (*AuthServer)(nil)

// NewAuthServer создает новый экземпляр AuthServer с указанным сервисом аутентификации и логгером.
func NewAuthServer(authService AuthService, logger *slog.Logger) *AuthServer {
	return &AuthServer{
		authService: authService,
		log:         logger,
	}
}

// Register создает нового пользователя
func (s *AuthServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in := authrpc.DecodeRegister(req)
	log := s.log.With(slog.String("method", "Register"), slog.String("email", in.Email))
	log.Info("register request")

	user, err := s.authService.Register(ctx, in.Name, in.Email, in.Password, in.Role)
	if err != nil {
		log.Error("register failed", sl.Err(err))
		return nil, authrpc.ToStatus(err)
	}
	resp, err := authrpc.EncodeUser(*user)
	if err != nil {
		log.Error("failed to encode user", sl.Err(err))
		return nil, authrpc.ToStatus(err)
	}
	return resp, nil
}

// Login проверяет пользователя и генерирует JWT
func (s *AuthServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, password := authrpc.DecodeLogin(req)
	log := s.log.With(slog.String("method", "Login"), slog.String("email", email))
	log.Info("login request")

	res, err := s.authService.Login(ctx, email, password)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		return nil, authrpc.ToStatus(err)
	}
	resp, err := authrpc.EncodeLoginResult(*res)
	if err != nil {
		log.Error("failed to encode login result", sl.Err(err))
		return nil, authrpc.ToStatus(err)
	}
	return resp, nil
}

// ValidateToken проверяет валидность JWT и возвращает данные пользователя
func (s *AuthServer) ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	p, err := s.authService.ValidateToken(ctx, req.GetValue())
	if err != nil {
		s.log.Debug("invalid token", sl.Err(err))
		return nil, authrpc.ToStatus(err)
	}
	resp, err := authrpc.EncodePrincipal(*p)
	if err != nil {
		s.log.Error("failed to encode principal", sl.Err(err))
		return nil, authrpc.ToStatus(err)
	}
	return resp, nil
}
