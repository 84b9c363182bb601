// Package create реализует HTTP-обработчик добавления книги в каталог.
//
// Handler принимает JSON с данными книги, валидирует его и создаёт книгу
// через сервис каталога. Без totalCopies книга создаётся с одним экземпляром.
package create

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

// Handler управляет HTTP-запросами на создание книг.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис каталога
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает создание книги.
type Service interface {
	Create(ctx context.Context, req models.DummyBook) (*models.Book, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить книгу
// @Description Создаёт книгу. Все экземпляры новой книги доступны.
// @Tags Books
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyBook true "Данные книги"
// @Success 201 {object} response.Response{data=models.Book} "Книга создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /books [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.books.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyBook
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

	book, err := h.service.Create(r.Context(), req)
	if err != nil {
		log.Error("failed to create book", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("book created", slog.String("book_id", book.ID.String()))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(book))
}
