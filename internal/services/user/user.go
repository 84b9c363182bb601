// Package user содержит административные операции над пользователями.
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Repository описывает хранилище пользователей.
type Repository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// Service реализует операции над пользователями.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List возвращает всех пользователей.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	const op = "user.List"
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// Delete удаляет пользователя. Его выдачи остаются в истории.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "user.Delete"
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user removed", sl.Op(op), slog.String("user_id", id.String()))
	return nil
}
