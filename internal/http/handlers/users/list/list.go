// Package list реализует HTTP-обработчик списка пользователей (только для администратора).
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

// Handler отдаёт список пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение пользователей.
type Service interface {
	List(ctx context.Context) ([]models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.User} "Пользователи"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	render.JSON(w, r, response.StatusOKWithData(users))
}
