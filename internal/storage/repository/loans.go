package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// loanRow — строка выдачи с данными книги и читателя из LEFT JOIN.
// Поля снимков пусты, если книга или пользователь удалены.
type loanRow struct {
	ID         uuid.UUID      `db:"id"`
	BookID     uuid.UUID      `db:"book_id"`
	UserID     uuid.UUID      `db:"user_id"`
	IssueDate  time.Time      `db:"issue_date"`
	DueDate    time.Time      `db:"due_date"`
	ReturnDate sql.NullTime   `db:"return_date"`
	Status     string         `db:"status"`
	FineAmount int            `db:"fine_amount"`
	BookTitle  sql.NullString `db:"book_title"`
	BookAuthor sql.NullString `db:"book_author"`
	UserName   sql.NullString `db:"user_name"`
	UserEmail  sql.NullString `db:"user_email"`
}

func (r loanRow) toModel() models.Loan {
	loan := models.Loan{
		ID:         r.ID,
		Book:       models.BookRef{ID: r.BookID},
		User:       models.UserRef{ID: r.UserID},
		IssueDate:  r.IssueDate,
		DueDate:    r.DueDate,
		Status:     r.Status,
		FineAmount: r.FineAmount,
	}
	if r.ReturnDate.Valid {
		t := r.ReturnDate.Time
		loan.ReturnDate = &t
	}
	if r.BookTitle.Valid {
		loan.Book.Snapshot = &models.BookSnapshot{Title: r.BookTitle.String, Author: r.BookAuthor.String}
	}
	if r.UserEmail.Valid {
		loan.User.Snapshot = &models.UserSnapshot{Name: r.UserName.String, Email: r.UserEmail.String}
	}
	return loan
}

func loanSelect() *goqu.SelectDataset {
	return dialect.From(goqu.T("loans").As("l")).
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id")))).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("l.user_id")))).
		Select(
			goqu.I("l.id"), goqu.I("l.book_id"), goqu.I("l.user_id"),
			goqu.I("l.issue_date"), goqu.I("l.due_date"), goqu.I("l.return_date"),
			goqu.I("l.status"), goqu.I("l.fine_amount"),
			goqu.I("b.title").As("book_title"), goqu.I("b.author").As("book_author"),
			goqu.I("u.name").As("user_name"), goqu.I("u.email").As("user_email"),
		).
		Prepared(true)
}

func (s *Storage) selectLoans(ctx context.Context, ds *goqu.SelectDataset) ([]models.Loan, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	var rows []loanRow
	if err := s.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	loans := make([]models.Loan, 0, len(rows))
	for _, r := range rows {
		loans = append(loans, r.toModel())
	}
	return loans, nil
}

// GetLoan возвращает выдачу со снимками книги и читателя.
func (s *Storage) GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	const op = "storage.GetLoan"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	loans, err := s.selectLoans(ctx, loanSelect().Where(goqu.I("l.id").Eq(id.String())))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(loans) == 0 {
		return nil, fmt.Errorf("%s: loan %s: %w", op, id, models.ErrNotFound)
	}
	return &loans[0], nil
}

// ListLoans возвращает выдачи по фильтру, новые первыми.
func (s *Storage) ListLoans(ctx context.Context, filter models.LoanFilter) ([]models.Loan, error) {
	const op = "storage.ListLoans"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	ds := loanSelect().Order(goqu.I("l.issue_date").Desc(), goqu.I("l.id").Asc())
	if filter.UserID != nil {
		ds = ds.Where(goqu.I("l.user_id").Eq(filter.UserID.String()))
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.I("l.status").Eq(filter.Status))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	loans, err := s.selectLoans(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return loans, nil
}

// FindLoansDueBetween возвращает незакрытые выдачи со сроком в интервале (from, to],
// о которых ещё не отправлено напоминание.
func (s *Storage) FindLoansDueBetween(ctx context.Context, from, to time.Time) ([]models.Loan, error) {
	const op = "storage.FindLoansDueBetween"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	loans, err := s.selectLoans(ctx, loanSelect().
		Where(
			goqu.I("l.status").Eq(models.LoanIssued),
			goqu.I("l.due_date").Gt(from),
			goqu.I("l.due_date").Lte(to),
			goqu.I("l.due_soon_notified_at").IsNull(),
		).
		Order(goqu.I("l.due_date").Asc()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return loans, nil
}

// FindOverdueLoans возвращает незакрытые выдачи, срок которых истёк до now, если
// напоминание о просрочке ещё не отправлялось или отправлено не позже notifiedBefore.
func (s *Storage) FindOverdueLoans(ctx context.Context, now, notifiedBefore time.Time) ([]models.Loan, error) {
	const op = "storage.FindOverdueLoans"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	loans, err := s.selectLoans(ctx, loanSelect().
		Where(
			goqu.I("l.status").Eq(models.LoanIssued),
			goqu.I("l.due_date").Lt(now),
			goqu.Or(
				goqu.I("l.overdue_notified_at").IsNull(),
				goqu.I("l.overdue_notified_at").Lte(notifiedBefore),
			),
		).
		Order(goqu.I("l.due_date").Asc()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return loans, nil
}

// MarkDueSoonNotified запоминает время отправки напоминания о скором сроке.
func (s *Storage) MarkDueSoonNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.markNotified(ctx, "storage.MarkDueSoonNotified", "due_soon_notified_at", id, at)
}

// MarkOverdueNotified запоминает время последнего напоминания о просрочке.
func (s *Storage) MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.markNotified(ctx, "storage.MarkOverdueNotified", "overdue_notified_at", id, at)
}

func (s *Storage) markNotified(ctx context.Context, op, column string, id uuid.UUID, at time.Time) error {
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query, args, err := dialect.Update("loans").
		Set(goqu.Record{column: at}).
		Where(goqu.C("id").Eq(id.String())).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: loan %s: %w", op, id, models.ErrNotFound)
	}
	return nil
}

// IssueLoan в одной транзакции уменьшает счётчик книги по change и сохраняет выдачу.
// Если счётчик успел измениться, возвращает models.ErrConflict и ничего не пишет.
func (s *Storage) IssueLoan(ctx context.Context, loan models.Loan, change models.LedgerChange) error {
	const op = "storage.IssueLoan"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := applyLedger(ctx, tx, change); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO loans (id, book_id, user_id, issue_date, due_date, status, fine_amount)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			loan.ID, loan.Book.ID, loan.User.ID, loan.IssueDate, loan.DueDate, loan.Status, loan.FineAmount)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReturnLoan закрывает выдачу и, если change не nil, возвращает экземпляр в фонд.
// Выдача обновляется только из статуса Issued, иначе models.ErrAlreadyReturned.
// Если книга удалена между чтением и записью, счётчик пропускается.
func (s *Storage) ReturnLoan(ctx context.Context, loan models.Loan, change *models.LedgerChange) error {
	const op = "storage.ReturnLoan"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE loans SET status = $2, return_date = $3, fine_amount = $4
			 WHERE id = $1 AND status = $5`,
			loan.ID, models.LoanReturned, loan.ReturnDate, loan.FineAmount, models.LoanIssued)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return models.ErrAlreadyReturned
		}

		if change == nil {
			return nil
		}
		if err := applyLedger(ctx, tx, *change); err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
