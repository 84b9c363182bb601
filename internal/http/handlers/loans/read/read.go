// Package read реализует HTTP-обработчик чтения одной выдачи.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Handler отдаёт выдачу по ID.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение выдачи.
type Service interface {
	Get(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Loan, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить выдачу
// @Description Доступно владельцу выдачи и администратору.
// @Tags IssuedBooks
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID выдачи"
// @Success 200 {object} response.Response{data=models.Loan} "Выдача"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Выдача не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /issued-books/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loans.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		log.Error("principal not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("invalid id format", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	loan, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		log.Warn("failed to read loan", sl.Err(err), slog.String("loan_id", id.String()))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(loan))
}
