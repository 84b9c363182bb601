// Package scheduler периодически ищет выдачи с подходящим или истёкшим сроком
// и публикует напоминания в RabbitMQ.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/library-management/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/metrics"
	"github.com/magabrotheeeer/library-management/internal/models"
	"github.com/magabrotheeeer/library-management/internal/services/loan"
)

const (
	dueSoonWindow = 24 * time.Hour
	// overdueRepeat — как часто повторяется напоминание о просрочке.
	overdueRepeat = 24 * time.Hour
)

// LoanRepository описывает поиск выдач для напоминаний и отметки об отправке.
// Выдачи с отметкой о напоминании о скором сроке повторно не возвращаются.
type LoanRepository interface {
	FindLoansDueBetween(ctx context.Context, from, to time.Time) ([]models.Loan, error)
	FindOverdueLoans(ctx context.Context, now, notifiedBefore time.Time) ([]models.Loan, error)
	MarkDueSoonNotified(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Publisher публикует сообщение с ключом маршрутизации.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service ищет выдачи и публикует напоминания.
type Service struct {
	repo     LoanRepository
	pub      Publisher
	log      *slog.Logger
	fine     loan.FinePolicy
	interval time.Duration
	now      func() time.Time
}

// NewService создает новый экземпляр Service.
func NewService(repo LoanRepository, pub Publisher, log *slog.Logger, interval time.Duration, finePerDay int) *Service {
	return &Service{
		repo:     repo,
		pub:      pub,
		log:      log,
		fine:     loan.FinePolicy{PerDay: finePerDay},
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run сразу выполняет оба поиска, затем повторяет их с интервалом до отмены ctx.
func (s *Service) Run(ctx context.Context) {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	if _, err := s.DueSoon(ctx); err != nil {
		s.log.Error("due soon run failed", sl.Err(err))
	}
	if _, err := s.Overdue(ctx); err != nil {
		s.log.Error("overdue run failed", sl.Err(err))
	}
}

// DueSoon публикует напоминания о выдачах со сроком в ближайшие сутки.
// Каждая выдача получает такое напоминание один раз.
// Возвращает число опубликованных сообщений.
func (s *Service) DueSoon(ctx context.Context) (int, error) {
	const op = "scheduler.DueSoon"
	now := s.now()
	loans, err := s.repo.FindLoansDueBetween(ctx, now, now.Add(dueSoonWindow))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return s.publish(ctx, op, rabbitmq.RoutingKeyDueSoon, "due_soon", loans, now,
		func(models.Loan) int { return 0 }, s.repo.MarkDueSoonNotified), nil
}

// Overdue публикует напоминания о просроченных выдачах с уже набежавшим штрафом,
// не чаще раза в сутки на выдачу.
func (s *Service) Overdue(ctx context.Context) (int, error) {
	const op = "scheduler.Overdue"
	now := s.now()
	loans, err := s.repo.FindOverdueLoans(ctx, now, now.Add(-overdueRepeat))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	accrued := func(l models.Loan) int { return s.fine.Amount(l.DueDate, now) }
	return s.publish(ctx, op, rabbitmq.RoutingKeyOverdue, "overdue", loans, now, accrued, s.repo.MarkOverdueNotified), nil
}

type markFunc func(ctx context.Context, id uuid.UUID, at time.Time) error

func (s *Service) publish(
	ctx context.Context,
	op, routingKey, kind string,
	loans []models.Loan,
	now time.Time,
	fine func(models.Loan) int,
	mark markFunc,
) int {
	log := s.log.With(sl.Op(op))
	if len(loans) == 0 {
		log.Debug("no loans found")
		return 0
	}
	log.Info("found loans", slog.Int("count", len(loans)))

	published := 0
	for _, l := range loans {
		notice, ok := noticeFor(l)
		if !ok {
			log.Warn("borrower no longer exists, skipping", slog.String("loan_id", l.ID.String()))
			continue
		}
		notice.FineAmount = fine(l)
		if err := s.pub.Publish(ctx, routingKey, notice); err != nil {
			log.Error("failed to publish message", sl.Err(err), slog.String("loan_id", l.ID.String()))
			continue
		}
		metrics.RemindersPublished.WithLabelValues(kind).Inc()
		published++
		if err := mark(ctx, l.ID, now); err != nil {
			// без отметки письмо уйдёт повторно на следующем тике
			log.Error("failed to mark loan as notified", sl.Err(err), slog.String("loan_id", l.ID.String()))
		}
	}
	return published
}

func noticeFor(l models.Loan) (models.LoanNotice, bool) {
	if l.User.Snapshot == nil {
		return models.LoanNotice{}, false
	}
	n := models.LoanNotice{
		LoanID:  l.ID,
		Email:   l.User.Snapshot.Email,
		Name:    l.User.Snapshot.Name,
		DueDate: l.DueDate,
	}
	if l.Book.Snapshot != nil {
		n.BookTitle = l.Book.Snapshot.Title
	}
	return n, true
}
