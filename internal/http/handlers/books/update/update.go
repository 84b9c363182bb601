// Package update реализует HTTP-обработчик частичного обновления книги.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Handler обновляет книгу.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает обновление книги.
type Service interface {
	Update(ctx context.Context, id uuid.UUID, patch models.BookPatch) (*models.Book, error)
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
// @Summary Обновить книгу
// @Description Меняет только переданные поля. Изменение totalCopies сдвигает число доступных экземпляров.
// @Tags Books
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID книги"
// @Param request body models.BookPatch true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Book} "Обновлённая книга"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 409 {object} response.ErrorResponse "Конкурентное изменение"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.books.update"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("invalid id format", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	var patch models.BookPatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(patch); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	book, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		log.Error("failed to update book", sl.Err(err), slog.String("book_id", id.String()))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("book updated", slog.String("book_id", id.String()))
	render.JSON(w, r, response.StatusOKWithData(book))
}
