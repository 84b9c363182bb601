// Package book реализует каталог книг. Список книг кешируется в Redis,
// любое изменение сбрасывает кеш.
package book

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

// Repository описывает хранилище книг.
type Repository interface {
	CreateBook(ctx context.Context, book models.Book) (*models.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	// UpdateBook записывает книгу, только если available_copies всё ещё равен observed.
	UpdateBook(ctx context.Context, book models.Book, observed int) (*models.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует операции над каталогом книг.
type Service struct {
	repo       Repository
	cache      Cache
	log        *slog.Logger
	ttl        time.Duration
	attempts   int
	retryDelay time.Duration
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, log *slog.Logger, cfg config.Library) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		log:        log,
		ttl:        cfg.BooksCacheTTL,
		attempts:   max(cfg.IssueRetryAttempts, 1),
		retryDelay: cfg.IssueRetryBaseDelay,
	}
}

// List возвращает все книги, сначала пытаясь прочитать их из кеша.
func (s *Service) List(ctx context.Context) ([]models.Book, error) {
	const op = "book.List"
	log := s.log.With(sl.Op(op))

	var books []models.Book
	found, err := s.cache.Get(ctx, cache.KeyBooks, &books)
	if err != nil {
		log.Warn("failed to read books from cache", sl.Err(err))
	}
	if found && err == nil {
		return books, nil
	}

	books, err = s.repo.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, cache.KeyBooks, books, s.ttl); err != nil {
		log.Warn("failed to cache books", sl.Err(err))
	}
	return books, nil
}

// Create добавляет книгу. Без TotalCopies создаётся один экземпляр.
func (s *Service) Create(ctx context.Context, req models.DummyBook) (*models.Book, error) {
	const op = "book.Create"

	total := 1
	if req.TotalCopies != nil {
		total = *req.TotalCopies
	}
	if total < 0 {
		return nil, fmt.Errorf("%s: total copies %d: %w", op, total, models.ErrInvalidInput)
	}

	created, err := s.repo.CreateBook(ctx, models.Book{
		ID:              uuid.New(),
		Title:           req.Title,
		Author:          req.Author,
		Category:        req.Category,
		TotalCopies:     total,
		AvailableCopies: total,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, op)
	return created, nil
}

// Update меняет только переданные поля книги. Новое число экземпляров
// пересчитывает доступные с ограничением [0, totalCopies].
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch models.BookPatch) (*models.Book, error) {
	const op = "book.Update"

	var updated *models.Book
	err := retry.WithBackoff(ctx, s.attempts, s.retryDelay, isConflict, func(ctx context.Context) error {
		current, err := s.repo.GetBook(ctx, id)
		if err != nil {
			return err
		}
		next, err := applyPatch(*current, patch)
		if err != nil {
			return err
		}
		updated, err = s.repo.UpdateBook(ctx, next, current.AvailableCopies)
		if isConflict(err) {
			metrics.LedgerConflicts.WithLabelValues("resize").Inc()
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, op)
	return updated, nil
}

// Delete удаляет книгу. Открытые выдачи этой книги остаются.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "book.Delete"
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	return nil
}

func applyPatch(book models.Book, patch models.BookPatch) (models.Book, error) {
	if patch.Title != nil {
		book.Title = *patch.Title
	}
	if patch.Author != nil {
		book.Author = *patch.Author
	}
	if patch.Category != nil {
		book.Category = *patch.Category
	}
	if patch.TotalCopies != nil {
		return inventory.Resize(book, *patch.TotalCopies)
	}
	return book, nil
}

func isConflict(err error) bool {
	return errors.Is(err, models.ErrConflict)
}

func (s *Service) invalidate(ctx context.Context, op string) {
	if err := s.cache.Invalidate(ctx, cache.KeyBooks); err != nil {
		s.log.Warn("failed to invalidate books cache", sl.Op(op), sl.Err(err))
	}
}
