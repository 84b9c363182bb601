package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-management/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *RepoMock) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_List(t *testing.T) {
	users := []models.User{
		{ID: uuid.New(), Name: "Admin", Role: models.RoleAdmin},
		{ID: uuid.New(), Name: "Student", Role: models.RoleStudent},
	}

	tests := []struct {
		name    string
		repo    []models.User
		repoErr error
		wantErr bool
	}{
		{name: "all users", repo: users},
		{name: "empty", repo: []models.User{}},
		{name: "database error", repoErr: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			if tt.repoErr != nil {
				repo.On("ListUsers", mock.Anything).Return(nil, tt.repoErr)
			} else {
				repo.On("ListUsers", mock.Anything).Return(tt.repo, nil)
			}
			svc := NewService(repo, newNoopLogger())

			got, err := svc.List(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.repo, got)
		})
	}
}

func TestService_Delete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{name: "removed"},
		{name: "not found", repoErr: models.ErrNotFound, wantErr: models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("DeleteUser", mock.Anything, id).Return(tt.repoErr)
			svc := NewService(repo, newNoopLogger())

			err := svc.Delete(context.Background(), id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}
