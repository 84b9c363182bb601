package update

import (
	"bytes"
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

	"github.com/magabrotheeeer/library-management/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, id uuid.UUID, patch models.BookPatch) (*models.Book, error) {
	args := m.Called(ctx, id, patch)
	book, _ := args.Get(0).(*models.Book)
	return book, args.Error(1)
}

func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	id := uuid.New()
	five := 5

	tests := []struct {
		name           string
		id             string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "copies resized",
			id:   id.String(),
			body: `{"totalCopies":5}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, id, models.BookPatch{TotalCopies: &five}).
					Return(&models.Book{ID: id, TotalCopies: 5, AvailableCopies: 4}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"totalCopies":5`,
		},
		{
			name: "book not found",
			id:   id.String(),
			body: `{"totalCopies":5}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, id, models.BookPatch{TotalCopies: &five}).Return(nil, models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"not found"`,
		},
		{
			name: "conflict after retries",
			id:   id.String(),
			body: `{"totalCopies":5}`,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, id, models.BookPatch{TotalCopies: &five}).Return(nil, models.ErrConflict)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "bad id",
			id:             "42",
			body:           `{}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid id",
		},
		{
			name:           "empty title",
			id:             id.String(),
			body:           `{"title":""}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := withID(httptest.NewRequest(http.MethodPut, "/api/books/"+tt.id, bytes.NewBufferString(tt.body)), tt.id)
			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
