// Package middlewarectx содержит HTTP middleware для обработки и проверки JWT токенов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization,
// валидирует его через gRPC-сервис, и в случае успеха добавляет в контекст
// пользователя запроса (models.Principal) для дальнейшего использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/library-management/internal/http/response"
	"github.com/magabrotheeeer/library-management/internal/lib/sl"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey — ключ пользователя запроса в контексте.
const PrincipalKey Key = "principal"

// TokenValidator описывает интерфейс сервиса для валидации JWT токена.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.Principal, error)
}

// WithPrincipal кладёт пользователя запроса в контекст.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFrom достаёт пользователя запроса из контекста.
func PrincipalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(models.Principal)
	return p, ok
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет пользователя запроса в контекст,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(authClient TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			p, err := authClient.ValidateToken(r.Context(), tokenStr)
			if errors.Is(err, models.ErrInvalidCredentials) {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			if err != nil {
				log.Error("failed to validate token", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("server error"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), *p)))
		})
	}
}

// RequireRole пропускает запрос, только если роль пользователя входит в roles.
// Должен стоять после JWTMiddleware.
func RequireRole(log *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				log.Error("principal missing in context")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			log.Warn("access denied",
				slog.String("user_id", p.UserID.String()),
				slog.String("role", p.Role),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("access denied"))
		})
	}
}
