// Package auth отвечает за регистрацию, вход и проверку JWT пользователей библиотеки.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/library-management/internal/lib/jwt"
	"github.com/magabrotheeeer/library-management/internal/lib/password"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя. Занятый email даёт models.ErrAlreadyExists.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUserByEmail возвращает пользователя или models.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создаёт пользователя с хэшированным паролем. Пустая роль означает Student.
func (s *Service) Register(ctx context.Context, name, email, rawPassword, role string) (*models.User, error) {
	const op = "auth.Register"

	if role == "" {
		role = models.RoleStudent
	}
	if role != models.RoleStudent && role != models.RoleAdmin {
		return nil, fmt.Errorf("%s: role %q: %w", op, role, models.ErrInvalidInput)
	}
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%s: name and email are required: %w", op, models.ErrInvalidInput)
	}

	hashed, err := password.GetHash(rawPassword)
	if errors.Is(err, password.ErrEmpty) || errors.Is(err, password.ErrTooLong) {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrInvalidInput, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// Login проверяет пароль пользователя и выдаёт JWT.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.LoginResult, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID.String(), user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.LoginResult{Token: token, User: *user}, nil
}

// ValidateToken проверяет JWT и возвращает пользователя запроса.
func (s *Service) ValidateToken(_ context.Context, token string) (*models.Principal, error) {
	const op = "auth.ValidateToken"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrInvalidCredentials, err)
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: user id in token: %w", op, models.ErrInvalidCredentials)
	}
	if claims.Role != models.RoleAdmin && claims.Role != models.RoleStudent {
		return nil, fmt.Errorf("%s: role %q in token: %w", op, claims.Role, models.ErrInvalidCredentials)
	}
	return &models.Principal{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

// EnsureAdmin создаёт администратора с указанными данными, если пользователя
// с таким email ещё нет. Возвращает true, если пользователь создан.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, rawPassword string) (bool, error) {
	const op = "auth.EnsureAdmin"

	_, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.Register(ctx, name, email, rawPassword, models.RoleAdmin)
	if errors.Is(err, models.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
