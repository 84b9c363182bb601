// Package repository реализует хранилище библиотеки на PostgreSQL:
// книги, пользователи и записи о выдаче. Изменения счётчика доступных
// экземпляров применяются условным UPDATE по ранее прочитанному значению
// в одной транзакции с записью о выдаче.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // postgres dialect для goqu
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Регистрация драйвера pgx для database/sql.
	"github.com/jmoiron/sqlx"
)

const uniqueViolation = "23505"

var dialect = goqu.Dialect("postgres")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sqlx.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sqlx.ConnectContext(ctx, "pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{DB: db}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady проверяет, что миграции применены.
func (s *Storage) CheckDatabaseReady(ctx context.Context) error {
	const op = "storage.CheckDatabaseReady"
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT FROM information_schema.tables WHERE table_name = 'loans'
	)`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: required table loans missing", op)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

// withTx выполняет fn в транзакции. При ошибке fn транзакция откатывается.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
