// Package remove реализует HTTP-обработчик удаления пользователя.
// Выдачи удалённого пользователя остаются в истории.
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

// Handler удаляет пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает удаление пользователя.
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
// @Summary Удалить пользователя
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response{data=response.Message} "Пользователь удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.remove"
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
		log.Error("failed to delete user", sl.Err(err), slog.String("user_id", id.String()))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("user removed", slog.String("user_id", id.String()))
	render.JSON(w, r, response.OKMessage("user removed"))
}
