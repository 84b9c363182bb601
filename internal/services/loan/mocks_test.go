package loan

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-management/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *RepoMock) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) GetLoan(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *RepoMock) ListLoans(ctx context.Context, filter models.LoanFilter) ([]models.Loan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Loan), args.Error(1)
}

func (m *RepoMock) IssueLoan(ctx context.Context, loan models.Loan, change models.LedgerChange) error {
	return m.Called(ctx, loan, change).Error(0)
}

func (m *RepoMock) ReturnLoan(ctx context.Context, loan models.Loan, change *models.LedgerChange) error {
	return m.Called(ctx, loan, change).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
