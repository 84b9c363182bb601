// Package giveback реализует HTTP-обработчик возврата книги.
// Возврат закрывает выдачу, возвращает экземпляр в фонд и начисляет штраф за просрочку.
package giveback

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
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Handler принимает книгу обратно.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает возврат книги.
type Service interface {
	Return(ctx context.Context, loanID uuid.UUID) (*models.Loan, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Вернуть книгу
// @Description Закрывает выдачу. Штраф: 5 за каждый начатый день просрочки.
// @Tags IssuedBooks
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID выдачи"
// @Success 200 {object} response.Response{data=models.Loan} "Выдача закрыта"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Выдача не найдена или уже закрыта"
// @Failure 409 {object} response.ErrorResponse "Конкурентное изменение"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /issued-books/{id}/return [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loans.giveback"
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

	loan, err := h.service.Return(r.Context(), id)
	if err != nil {
		log.Warn("failed to return book", sl.Err(err), slog.String("loan_id", id.String()))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("book returned", slog.String("loan_id", id.String()), slog.Int("fine", loan.FineAmount))
	render.JSON(w, r, response.StatusOKWithData(loan))
}
