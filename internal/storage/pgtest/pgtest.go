// Package pgtest поднимает PostgreSQL в контейнере для интеграционных тестов
// и заполняет его тестовыми данными.
package pgtest

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib" // драйвер pgx
)

// Start запускает контейнер postgres:15-alpine и возвращает строку подключения.
// В режиме -short тест пропускается.
func Start(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("library"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// MigrationsPath возвращает абсолютный путь к каталогу migrations/ в корне модуля.
func MigrationsPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	path, err := filepath.Abs(filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations"))
	require.NoError(t, err)
	return path
}

// Factory создаёт тестовые записи напрямую в БД.
type Factory struct {
	db *sqlx.DB
}

// NewFactory создает новую фабрику тестовых данных.
func NewFactory(db *sqlx.DB) *Factory {
	return &Factory{db: db}
}

// Book создаёт книгу и возвращает её ID.
func (f *Factory) Book(t *testing.T, title string, total, available int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := f.db.Exec(`INSERT INTO books (id, title, author, category, total_copies, available_copies)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, title, "Author of "+title, "fiction", total, available)
	require.NoError(t, err)
	return id
}

// User создаёт пользователя и возвращает его ID.
func (f *Factory) User(t *testing.T, name, email, role string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := f.db.Exec(`INSERT INTO users (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)`,
		id, name, email, "hashedpassword", role)
	require.NoError(t, err)
	return id
}

// Loan создаёт незакрытую выдачу и возвращает её ID.
func (f *Factory) Loan(t *testing.T, bookID, userID uuid.UUID, issued, due time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := f.db.Exec(`INSERT INTO loans (id, book_id, user_id, issue_date, due_date, status)
		VALUES ($1, $2, $3, $4, $5, 'Issued')`,
		id, bookID, userID, issued, due)
	require.NoError(t, err)
	return id
}

// AvailableCopies читает текущий счётчик книги.
func (f *Factory) AvailableCopies(t *testing.T, bookID uuid.UUID) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, `SELECT available_copies FROM books WHERE id = $1`, bookID))
	return n
}

// CountLoans возвращает число записей о выдаче.
func (f *Factory) CountLoans(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM loans`))
	return n
}
