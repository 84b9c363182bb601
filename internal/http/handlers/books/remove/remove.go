// Package remove реализует HTTP-обработчик удаления книги.
// Выдачи удалённой книги остаются в истории.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
)

// Handler удаляет книгу.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает удаление книги.
type Service interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить книгу
// @Tags Books
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID книги"
// @Success 200 {object} response.Response{data=response.Message} "Книга удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.books.remove"
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

	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Error("failed to delete book", sl.Err(err), slog.String("book_id", id.String()))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("book removed", slog.String("book_id", id.String()))
	render.JSON(w, r, response.OKMessage("book removed"))
}
