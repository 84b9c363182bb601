package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/magabrotheeeer/library-management/internal/models"
)

const bookColumns = `id, title, author, category, total_copies, available_copies, created_at, updated_at`

// CreateBook сохраняет книгу и возвращает её вместе с временными метками БД.
func (s *Storage) CreateBook(ctx context.Context, book models.Book) (*models.Book, error) {
	const op = "storage.CreateBook"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `INSERT INTO books (id, title, author, category, total_copies, available_copies)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + bookColumns
	var created models.Book
	if err := s.DB.GetContext(ctx, &created, query,
		book.ID, book.Title, book.Author, book.Category, book.TotalCopies, book.AvailableCopies); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// GetBook возвращает книгу по ID или models.ErrNotFound.
func (s *Storage) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	const op = "storage.GetBook"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var book models.Book
	err := s.DB.GetContext(ctx, &book, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: book %s: %w", op, id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &book, nil
}

// ListBooks возвращает все книги, упорядоченные по названию.
func (s *Storage) ListBooks(ctx context.Context) ([]models.Book, error) {
	const op = "storage.ListBooks"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	books := make([]models.Book, 0)
	if err := s.DB.SelectContext(ctx, &books, `SELECT `+bookColumns+` FROM books ORDER BY title, id`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return books, nil
}

// UpdateBook перезаписывает поля книги, если счётчик доступных экземпляров
// всё ещё равен observed. Иначе возвращает models.ErrConflict
// (или models.ErrNotFound, если книги уже нет).
func (s *Storage) UpdateBook(ctx context.Context, book models.Book, observed int) (*models.Book, error) {
	const op = "storage.UpdateBook"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `UPDATE books
			  SET title = $2, author = $3, category = $4,
			      total_copies = $5, available_copies = $6, updated_at = NOW()
			  WHERE id = $1 AND available_copies = $7
			  RETURNING ` + bookColumns
	var updated models.Book
	err := s.DB.GetContext(ctx, &updated, query,
		book.ID, book.Title, book.Author, book.Category, book.TotalCopies, book.AvailableCopies, observed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, missOrConflict(ctx, s.DB, book.ID))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &updated, nil
}

// DeleteBook удаляет книгу. Записи о выдаче не затрагиваются.
func (s *Storage) DeleteBook(ctx context.Context, id uuid.UUID) error {
	const op = "storage.DeleteBook"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: book %s: %w", op, id, models.ErrNotFound)
	}
	return nil
}

// applyLedger записывает новое значение available_copies, только если
// текущее значение совпадает с change.Observed.
func applyLedger(ctx context.Context, tx *sqlx.Tx, change models.LedgerChange) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE books SET available_copies = $3, updated_at = NOW()
		 WHERE id = $1 AND available_copies = $2`,
		change.BookID, change.Observed, change.Available)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	return missOrConflict(ctx, tx, change.BookID)
}

func missOrConflict(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) error {
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("book %s: %w", id, models.ErrNotFound)
	}
	return fmt.Errorf("book %s: %w", id, models.ErrConflict)
}
