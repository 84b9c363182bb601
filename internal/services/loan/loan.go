// Package loan управляет жизненным циклом выдачи книг: выдача, возврат
// с расчётом штрафа и просмотр записей с учётом роли пользователя.
package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/library-management/internal/cache"
	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/magabrotheeeer/library-management/internal/lib/retry"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/metrics"
	"github.com/magabrotheeeer/library-management/internal/models"
	"github.com/magabrotheeeer/library-management/internal/services/inventory"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Repository описывает хранилище книг, пользователей и выдач.
type Repository interface {
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	ListLoans(ctx context.Context, filter models.LoanFilter) ([]models.Loan, error)
	// IssueLoan атомарно сохраняет выдачу и изменение счётчика.
	IssueLoan(ctx context.Context, loan models.Loan, change models.LedgerChange) error
	// ReturnLoan атомарно закрывает выдачу и, если change не nil, меняет счётчик.
	ReturnLoan(ctx context.Context, loan models.Loan, change *models.LedgerChange) error
}

// Cache сбрасывает закешированный каталог книг.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
}

// Service реализует выдачу и возврат книг.
type Service struct {
	repo       Repository
	cache      Cache
	log        *slog.Logger
	fine       FinePolicy
	attempts   int
	retryDelay time.Duration
	now        func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, log *slog.Logger, cfg config.Library) *Service {
	attempts := cfg.IssueRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Service{
		repo:       repo,
		cache:      cache,
		log:        log,
		fine:       FinePolicy{PerDay: cfg.FinePerDay},
		attempts:   attempts,
		retryDelay: cfg.IssueRetryBaseDelay,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func isConflict(err error) bool {
	return errors.Is(err, models.ErrConflict)
}

// Issue выдаёт книгу читателю до даты dueDate.
func (s *Service) Issue(ctx context.Context, req models.DummyLoan) (*models.Loan, error) {
	const op = "loan.Issue"
	log := s.log.With(sl.Op(op), slog.String("book_id", req.BookID), slog.String("user_id", req.UserID))

	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return nil, fmt.Errorf("%s: book id: %w", op, models.ErrInvalidInput)
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: user id: %w", op, models.ErrInvalidInput)
	}
	now := s.now()
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("%s: due date %q: %w", op, req.DueDate, models.ErrInvalidInput)
	}
	if !due.After(now) {
		return nil, fmt.Errorf("%s: due date %s is in the past: %w", op, req.DueDate, models.ErrInvalidInput)
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var loan models.Loan
	err = retry.WithBackoff(ctx, s.attempts, s.retryDelay, isConflict, func(ctx context.Context) error {
		book, err := s.repo.GetBook(ctx, bookID)
		if err != nil {
			return err
		}
		change, err := inventory.AdjustOnIssue(*book)
		if err != nil {
			return err
		}

		loan = models.Loan{
			ID:        uuid.New(),
			Book:      models.BookRef{ID: book.ID, Snapshot: &models.BookSnapshot{Title: book.Title, Author: book.Author}},
			User:      models.UserRef{ID: user.ID, Snapshot: &models.UserSnapshot{Name: user.Name, Email: user.Email}},
			IssueDate: now,
			DueDate:   due,
			Status:    models.LoanIssued,
		}
		err = s.repo.IssueLoan(ctx, loan, change)
		if isConflict(err) {
			metrics.LedgerConflicts.WithLabelValues("issue").Inc()
			log.Debug("availability changed concurrently, retrying")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateBooks(ctx, log)
	metrics.LoansIssued.Inc()
	log.Info("book issued", slog.String("loan_id", loan.ID.String()))
	return &loan, nil
}

// Return закрывает выдачу и начисляет штраф за просрочку. Повторный возврат
// возвращает models.ErrAlreadyReturned и ничего не меняет. Если книга уже
// удалена из каталога, выдача закрывается без изменения счётчика.
func (s *Service) Return(ctx context.Context, loanID uuid.UUID) (*models.Loan, error) {
	const op = "loan.Return"
	log := s.log.With(sl.Op(op), slog.String("loan_id", loanID.String()))

	var loan *models.Loan
	err := retry.WithBackoff(ctx, s.attempts, s.retryDelay, isConflict, func(ctx context.Context) error {
		var err error
		loan, err = s.repo.GetLoan(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.IsReturned() {
			return models.ErrAlreadyReturned
		}

		now := s.now()
		loan.ReturnDate = &now
		loan.Status = models.LoanReturned
		loan.FineAmount = s.fine.Amount(loan.DueDate, now)

		change, err := s.returnChange(ctx, log, loan.Book.ID)
		if err != nil {
			return err
		}
		err = s.repo.ReturnLoan(ctx, *loan, change)
		if isConflict(err) {
			metrics.LedgerConflicts.WithLabelValues("return").Inc()
			log.Debug("availability changed concurrently, retrying")
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateBooks(ctx, log)
	metrics.LoansReturned.Inc()
	metrics.FinesCharged.Add(float64(loan.FineAmount))
	log.Info("book returned", slog.Int("fine_amount", loan.FineAmount))
	return loan, nil
}

func (s *Service) returnChange(ctx context.Context, log *slog.Logger, bookID uuid.UUID) (*models.LedgerChange, error) {
	book, err := s.repo.GetBook(ctx, bookID)
	if errors.Is(err, models.ErrNotFound) {
		log.Warn("book no longer in catalog, skipping inventory update", slog.String("book_id", bookID.String()))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	change, capped := inventory.AdjustOnReturn(*book)
	if capped {
		log.Warn("available copies already at total, count left unchanged",
			slog.String("book_id", bookID.String()), slog.Int("total_copies", book.TotalCopies))
	}
	return &change, nil
}

// List возвращает выдачи. Студент видит только свои записи, администратор все.
func (s *Service) List(ctx context.Context, principal models.Principal, filter models.LoanFilter) ([]models.Loan, error) {
	const op = "loan.List"

	switch filter.Status {
	case "", models.LoanIssued, models.LoanReturned:
	default:
		return nil, fmt.Errorf("%s: status %q: %w", op, filter.Status, models.ErrInvalidInput)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%s: negative pagination: %w", op, models.ErrInvalidInput)
	}
	if filter.Limit == 0 {
		filter.Limit = defaultLimit
	}
	filter.Limit = min(filter.Limit, maxLimit)

	if !principal.IsAdmin() {
		owner := principal.UserID
		filter.UserID = &owner
	}

	loans, err := s.repo.ListLoans(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return loans, nil
}

// Get возвращает выдачу владельцу или администратору. Для остальных
// запись считается несуществующей.
func (s *Service) Get(ctx context.Context, principal models.Principal, loanID uuid.UUID) (*models.Loan, error) {
	const op = "loan.Get"

	loan, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !principal.IsAdmin() && loan.User.ID != principal.UserID {
		return nil, fmt.Errorf("%s: loan %s: %w", op, loanID, models.ErrNotFound)
	}
	return loan, nil
}

func (s *Service) invalidateBooks(ctx context.Context, log *slog.Logger) {
	if err := s.cache.Invalidate(ctx, cache.KeyBooks); err != nil {
		log.Warn("failed to invalidate books cache", sl.Err(err))
	}
}

// parseDueDate принимает RFC3339 или дату без времени. Дата без времени
// означает конец этого дня по UTC: книгу можно вернуть в любое время в тот же день.
func parseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.Add(24*time.Hour - time.Second), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
