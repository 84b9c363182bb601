// Package client реализует клиент gRPC-сервиса авторизации для HTTP API.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/magabrotheeeer/library-management/internal/grpc/authrpc"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// AuthClient вызывает сервис авторизации и возвращает доменные ошибки.
type AuthClient struct {
	conn *grpc.ClientConn
}

// NewAuthClient создаёт клиента. Соединение устанавливается при первом вызове.
func NewAuthClient(addr string, opts ...grpc.DialOption) (*AuthClient, error) {
	const op = "client.NewAuthClient"
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthClient{conn: conn}, nil
}

// Close закрывает соединение.
func (a *AuthClient) Close() error {
	return a.conn.Close()
}

// Register регистрирует пользователя.
func (a *AuthClient) Register(ctx context.Context, u models.DummyUser) (*models.User, error) {
	const op = "client.Register"
	req, err := authrpc.EncodeRegister(u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp := new(structpb.Struct)
	if err := a.conn.Invoke(ctx, authrpc.RegisterMethod, req, resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, authrpc.FromStatus(err))
	}
	user, err := authrpc.DecodeUser(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// Login возвращает токен и данные пользователя.
func (a *AuthClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	const op = "client.Login"
	req, err := authrpc.EncodeLogin(email, password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp := new(structpb.Struct)
	if err := a.conn.Invoke(ctx, authrpc.LoginMethod, req, resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, authrpc.FromStatus(err))
	}
	res, err := authrpc.DecodeLoginResult(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// ValidateToken проверяет токен и возвращает пользователя запроса.
func (a *AuthClient) ValidateToken(ctx context.Context, token string) (*models.Principal, error) {
	const op = "client.ValidateToken"
	resp := new(structpb.Struct)
	if err := a.conn.Invoke(ctx, authrpc.ValidateTokenMethod, wrapperspb.String(token), resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, authrpc.FromStatus(err))
	}
	p, err := authrpc.DecodePrincipal(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
