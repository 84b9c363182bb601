// Package login реализует HTTP-обработчик входа пользователя.
//
// Handler декодирует email и пароль, валидирует их и делегирует проверку
// gRPC-сервису авторизации. При успехе возвращает JWT и данные пользователя.
package login

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

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log        *slog.Logger        // Логгер для записи операций и ошибок
	authClient Service             // Клиент для вызова gRPC-сервиса аутентификации
	validate   *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
}

// New создает новый экземпляр Handler с указанными логгером и клиентом аутентификации.
func New(log *slog.Logger, authClient Service) *Handler {
	return &Handler{
		log:        log,
		authClient: authClient,
		validate:   validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Проверяет email и пароль, возвращает JWT и данные пользователя.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body models.DummyLogin true "Учетные данные пользователя"
// @Success 200 {object} response.Response{data=models.LoginResult} "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyLogin
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

	res, err := h.authClient.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("login success", slog.String("user_id", res.User.ID.String()))
	render.JSON(w, r, response.StatusOKWithData(res))
}
