// Package issue реализует HTTP-обработчик выдачи книги читателю.
//
// Handler принимает bookId, userId и dueDate, валидирует их и вызывает
// сервис выдачи. Книга без свободных экземпляров даёт 400 "book is not available".
package issue

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Handler выдаёт книги.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает выдачу книги.
type Service interface {
	Issue(ctx context.Context, req models.DummyLoan) (*models.Loan, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выдать книгу
// @Description Уменьшает число доступных экземпляров и создаёт запись о выдаче.
// @Tags IssuedBooks
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyLoan true "Книга, читатель и срок возврата (2006-01-02 или RFC3339)"
// @Success 201 {object} response.Response{data=models.Loan} "Книга выдана"
// @Failure 400 {object} response.ErrorResponse "Книга недоступна или некорректные данные"
// @Failure 404 {object} response.ErrorResponse "Книга или читатель не найдены"
// @Failure 409 {object} response.ErrorResponse "Конкурентное изменение"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /issued-books [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loans.issue"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyLoan
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	loan, err := h.service.Issue(r.Context(), req)
	if err != nil {
		log.Warn("failed to issue book", sl.Err(err), slog.String("book_id", req.BookID), slog.String("user_id", req.UserID))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("book issued", slog.String("loan_id", loan.ID.String()))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(loan))
}
