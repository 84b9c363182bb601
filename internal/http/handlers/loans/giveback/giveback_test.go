package giveback

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/library-management/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Return(ctx context.Context, loanID uuid.UUID) (*models.Loan, error) {
	args := m.Called(ctx, loanID)
	loan, _ := args.Get(0).(*models.Loan)
	return loan, args.Error(1)
}

func TestGivebackHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	id := uuid.New()

	tests := []struct {
		name           string
		id             string
		serviceLoan    *models.Loan
		serviceErr     error
		callService    bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "returned late",
			id:             id.String(),
			serviceLoan:    &models.Loan{ID: id, Status: models.LoanReturned, FineAmount: 15},
			callService:    true,
			expectedStatus: http.StatusOK,
			expectedBody:   `"fineAmount":15`,
		},
		{
			name:           "already returned",
			id:             id.String(),
			serviceErr:     fmt.Errorf("loan.Return: %w", models.ErrAlreadyReturned),
			callService:    true,
			expectedStatus: http.StatusNotFound,
			expectedBody:   "already returned",
		},
		{
			name:           "bad id",
			id:             "7",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.callService {
				svc.On("Return", mock.Anything, id).Return(tt.serviceLoan, tt.serviceErr)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/issued-books/"+tt.id+"/return", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
