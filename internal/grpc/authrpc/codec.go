package authrpc

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/magabrotheeeer/library-management/internal/models"
)

// Поля сообщений.
const (
	fieldID        = "id"
	fieldName      = "name"
	fieldEmail     = "email"
	fieldPassword  = "password"
	fieldRole      = "role"
	fieldCreatedAt = "createdAt"
	fieldToken     = "token"
	fieldUser      = "user"
	fieldUserID    = "userId"
)

// EncodeRegister собирает запрос регистрации.
func EncodeRegister(u models.DummyUser) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldName:     u.Name,
		fieldEmail:    u.Email,
		fieldPassword: u.Password,
		fieldRole:     u.Role,
	})
}

// DecodeRegister разбирает запрос регистрации.
func DecodeRegister(s *structpb.Struct) models.DummyUser {
	return models.DummyUser{
		Name:     str(s, fieldName),
		Email:    str(s, fieldEmail),
		Password: str(s, fieldPassword),
		Role:     str(s, fieldRole),
	}
}

// EncodeLogin собирает запрос входа.
func EncodeLogin(email, password string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldEmail:    email,
		fieldPassword: password,
	})
}

// DecodeLogin разбирает запрос входа.
func DecodeLogin(s *structpb.Struct) (email, password string) {
	return str(s, fieldEmail), str(s, fieldPassword)
}

// EncodeUser сериализует пользователя без хэша пароля.
func EncodeUser(u models.User) (*structpb.Struct, error) {
	return structpb.NewStruct(userMap(u))
}

// DecodeUser восстанавливает пользователя из ответа.
func DecodeUser(s *structpb.Struct) (models.User, error) {
	id, err := uuid.Parse(str(s, fieldID))
	if err != nil {
		return models.User{}, fmt.Errorf("authrpc: user id: %w", err)
	}
	u := models.User{
		ID:    id,
		Name:  str(s, fieldName),
		Email: str(s, fieldEmail),
		Role:  str(s, fieldRole),
	}
	if raw := str(s, fieldCreatedAt); raw != "" {
		if u.CreatedAt, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return models.User{}, fmt.Errorf("authrpc: created at: %w", err)
		}
	}
	return u, nil
}

// EncodeLoginResult сериализует токен и пользователя.
func EncodeLoginResult(r models.LoginResult) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldToken: r.Token,
		fieldUser:  userMap(r.User),
	})
}

// DecodeLoginResult разбирает ответ на вход.
func DecodeLoginResult(s *structpb.Struct) (*models.LoginResult, error) {
	user, err := DecodeUser(s.GetFields()[fieldUser].GetStructValue())
	if err != nil {
		return nil, err
	}
	return &models.LoginResult{Token: str(s, fieldToken), User: user}, nil
}

// EncodePrincipal сериализует пользователя запроса.
func EncodePrincipal(p models.Principal) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldUserID: p.UserID.String(),
		fieldEmail:  p.Email,
		fieldRole:   p.Role,
	})
}

// DecodePrincipal разбирает ответ проверки токена.
func DecodePrincipal(s *structpb.Struct) (*models.Principal, error) {
	id, err := uuid.Parse(str(s, fieldUserID))
	if err != nil {
		return nil, fmt.Errorf("authrpc: principal id: %w", err)
	}
	return &models.Principal{UserID: id, Email: str(s, fieldEmail), Role: str(s, fieldRole)}, nil
}

func userMap(u models.User) map[string]any {
	m := map[string]any{
		fieldID:    u.ID.String(),
		fieldName:  u.Name,
		fieldEmail: u.Email,
		fieldRole:  u.Role,
	}
	if !u.CreatedAt.IsZero() {
		m[fieldCreatedAt] = u.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return m
}

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// ToStatus переводит доменную ошибку в статус gRPC.
func ToStatus(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, models.ErrInvalidCredentials.Error())
	case errors.Is(err, models.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, models.ErrAlreadyExists.Error())
	case errors.Is(err, models.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// FromStatus переводит статус gRPC обратно в доменную ошибку.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return models.ErrInvalidCredentials
	case codes.AlreadyExists:
		return models.ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", models.ErrInvalidInput, st.Message())
	default:
		return fmt.Errorf("auth service: %s: %s", st.Code(), st.Message())
	}
}
