package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/library-management/internal/models"
)

const userColumns = `id, name, email, password_hash, role, created_at`

// CreateUser сохраняет нового пользователя. Занятый email даёт models.ErrAlreadyExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO users (id, name, email, password_hash, role)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + userColumns
	var created models.User
	err := s.DB.GetContext(ctx, &created, query, user.ID, user.Name, user.Email, user.PasswordHash, user.Role)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%s: email %s: %w", op, user.Email, models.ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.GetUser"
	return s.getUser(ctx, op, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.getUser(ctx, op, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Storage) getUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var u models.User
	err := s.DB.GetContext(ctx, &u, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: user %v: %w", op, arg, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// ListUsers возвращает всех пользователей в порядке регистрации.
func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	users := make([]models.User, 0)
	if err := s.DB.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// DeleteUser удаляет пользователя. Его записи о выдаче остаются.
func (s *Storage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: user %s: %w", op, id, models.ErrNotFound)
	}
	return nil
}
