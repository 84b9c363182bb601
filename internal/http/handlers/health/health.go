// Package health реализует проверку живости сервиса и доступности базы данных.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
)

// Checker проверяет готовность зависимости.
type Checker interface {
	CheckDatabaseReady(ctx context.Context) error
}

// Handler отвечает на /health.
type Handler struct {
	log     *slog.Logger
	checker Checker
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, checker Checker) *Handler {
	return &Handler{
		log:     log,
		checker: checker,
	}
}

// ServeHTTP godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Сервис работает"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	if err := h.checker.CheckDatabaseReady(r.Context()); err != nil {
		h.log.Error("database is not ready", sl.Op(op), sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database unavailable"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
