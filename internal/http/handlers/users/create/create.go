// Package create реализует HTTP-обработчик создания пользователя администратором.
// В отличие от публичной регистрации, администратор может задать роль.
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

// Handler создаёт пользователей.
type Handler struct {
	log        *slog.Logger
	authClient Service
	validate   *validator.Validate
}

// Service описывает регистрацию через сервис авторизации.
type Service interface {
	Register(ctx context.Context, u models.DummyUser) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, authClient Service) *Handler {
	return &Handler{
		log:        log,
		authClient: authClient,
		validate:   validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать пользователя
// @Description Создаёт пользователя с указанной ролью (Admin или Student, по умолчанию Student).
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyUser true "Данные пользователя"
// @Success 201 {object} response.Response{data=models.User} "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyUser
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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

	user, err := h.authClient.Register(r.Context(), req)
	if err != nil {
		log.Error("failed to create user", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("user created", slog.String("user_id", user.ID.String()), slog.String("role", user.Role))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(user))
}
