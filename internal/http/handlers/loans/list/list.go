// Package list реализует HTTP-обработчик списка выдач.
//
// Администратор видит все выдачи, студент только свои. Поддерживаются
// параметры запроса status, limit и offset.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Handler отдаёт список выдач.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выборку выдач с учётом роли.
type Service interface {
	List(ctx context.Context, principal models.Principal, filter models.LoanFilter) ([]models.Loan, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список выдач
// @Description Администратор получает все выдачи, студент только свои.
// @Tags IssuedBooks
// @Produce  json
// @Security BearerAuth
// @Param status query string false "Issued или Returned"
// @Param limit query int false "Размер страницы (по умолчанию 50)"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response{data=[]models.Loan} "Список выдач"
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /issued-books [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loans.list"
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

	q := r.URL.Query()
	filter := models.LoanFilter{Status: q.Get("status")}
	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		log.Warn("invalid limit", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid limit"))
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		log.Warn("invalid offset", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid offset"))
		return
	}

	loans, err := h.service.List(r.Context(), principal, filter)
	if err != nil {
		log.Error("failed to list loans", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}
	if loans == nil {
		loans = []models.Loan{}
	}

	log.Debug("loans listed", slog.Int("count", len(loans)), slog.String("role", principal.Role))
	render.JSON(w, r, response.StatusOKWithData(loans))
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
