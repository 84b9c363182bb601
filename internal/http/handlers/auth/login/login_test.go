package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/library-management/internal/models"
)

type AuthClientMock struct {
	mock.Mock
}

func (m *AuthClientMock) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*models.LoginResult)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	user := models.User{ID: uuid.New(), Name: "Alice", Email: "alice@library.local", Role: models.RoleStudent}

	tests := []struct {
		name           string
		body           string
		mockResp       *models.LoginResult
		mockErr        error
		callService    bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "valid login",
			body:           `{"email":"alice@library.local","password":"secret1"}`,
			mockResp:       &models.LoginResult{Token: "tok", User: user},
			callService:    true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid json body",
			body:           `not a json`,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "validation error",
			body:           `{"email":"alice"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid credentials",
			body:           `{"email":"alice@library.local","password":"secret1"}`,
			mockErr:        models.ErrInvalidCredentials,
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid email or password",
		},
		{
			name:           "auth service down",
			body:           `{"email":"alice@library.local","password":"secret1"}`,
			mockErr:        errors.New("unavailable"),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthClientMock)
			if tt.callService {
				authMock.On("Login", mock.Anything, "alice@library.local", "secret1").Return(tt.mockResp, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), authMock)

			req := httptest.NewRequest(http.MethodPost, "/api/users/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)

			var resp struct {
				Status string              `json:"status"`
				Error  string              `json:"error"`
				Data   *models.LoginResult `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantStatusCode == http.StatusOK {
				assert.Equal(t, "OK", resp.Status)
				require.NotNil(t, resp.Data)
				assert.Equal(t, "tok", resp.Data.Token)
				assert.Equal(t, user.ID, resp.Data.User.ID)
			} else {
				assert.Equal(t, "Error", resp.Status)
				if tt.wantError != "" {
					assert.Equal(t, tt.wantError, resp.Error)
				}
			}
			authMock.AssertExpectations(t)
		})
	}
}
