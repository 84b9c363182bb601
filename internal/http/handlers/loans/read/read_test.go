package read

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Loan, error) {
	args := m.Called(ctx, principal, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Loan), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	principal := models.Principal{UserID: uuid.New(), Role: models.RoleStudent}
	id := uuid.New()

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "own loan",
			id:   id.String(),
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, principal, id).Return(&models.Loan{
					ID:   id,
					Book: models.BookRef{ID: uuid.New(), Snapshot: &models.BookSnapshot{Title: "Dune", Author: "Frank Herbert"}},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"Dune"`,
		},
		{
			name: "someone else's loan",
			id:   id.String(),
			setupMock: func(m *MockService) {
				m.On("Get", mock.Anything, principal, id).Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad id",
			id:             "abc",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid id"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/issued-books/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithPrincipal(ctx, principal))

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
