package create

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-management/internal/models"
)

type AuthClientMock struct {
	mock.Mock
}

func (m *AuthClientMock) Register(ctx context.Context, u models.DummyUser) (*models.User, error) {
	args := m.Called(ctx, u)
	resp, _ := args.Get(0).(*models.User)
	return resp, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name         string
		body         string
		want         *models.DummyUser
		mockErr      error
		wantStatus   int
		wantContains string
	}{
		{
			name:         "admin created",
			body:         `{"name":"Bob","email":"bob@library.local","password":"secret1","role":"Admin"}`,
			want:         &models.DummyUser{Name: "Bob", Email: "bob@library.local", Password: "secret1", Role: models.RoleAdmin},
			wantStatus:   http.StatusCreated,
			wantContains: `"role":"Admin"`,
		},
		{
			name:         "unknown role",
			body:         `{"name":"Bob","email":"bob@library.local","password":"secret1","role":"Librarian"}`,
			wantStatus:   http.StatusUnprocessableEntity,
			wantContains: "field Role must be one of",
		},
		{
			name:         "duplicate",
			body:         `{"name":"Bob","email":"bob@library.local","password":"secret1"}`,
			want:         &models.DummyUser{Name: "Bob", Email: "bob@library.local", Password: "secret1"},
			mockErr:      models.ErrAlreadyExists,
			wantStatus:   http.StatusConflict,
			wantContains: "already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthClientMock)
			if tt.want != nil {
				var user *models.User
				if tt.mockErr == nil {
					user = &models.User{ID: uuid.New(), Name: tt.want.Name, Email: tt.want.Email, Role: tt.want.Role}
				}
				authMock.On("Register", mock.Anything, *tt.want).Return(user, tt.mockErr)
			}

			w := httptest.NewRecorder()
			New(logger, authMock).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantContains)
			authMock.AssertExpectations(t)
		})
	}
}
