// Package migrations применяет SQL-миграции из каталога migrations/.
package migrations

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// источник миграций
)

// Run применяет все невыполненные миграции из каталога path.
func Run(db *sql.DB, path string) error {
	const op = "migrations.Run"
	m, err := newMigrate(db, path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Down откатывает все миграции. Используется в тестах.
func Down(db *sql.DB, path string) error {
	const op = "migrations.Down"
	m, err := newMigrate(db, path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func newMigrate(db *sql.DB, path string) (*migrate.Migrate, error) {
	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithDatabaseInstance("file://"+path, "pgx_v5", driver)
}
