// Package list реализует публичный HTTP-обработчик списка книг.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Handler отдаёт каталог книг.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение каталога.
type Service interface {
	List(ctx context.Context) ([]models.Book, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список книг
// @Description Возвращает все книги с количеством доступных экземпляров.
// @Tags Books
// @Produce  json
// @Success 200 {object} response.Response{data=[]models.Book} "Список книг"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.books.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	books, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list books", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}
	if books == nil {
		books = []models.Book{}
	}

	log.Debug("books listed", slog.Int("count", len(books)))
	render.JSON(w, r, response.StatusOKWithData(books))
}
