package library

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/magabrotheeeer/library-management/docs" // Swagger-спецификация для /docs.
	"github.com/magabrotheeeer/library-management/internal/config"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/auth/register"
	bookcreate "github.com/magabrotheeeer/library-management/internal/http/handlers/books/create"
	booklist "github.com/magabrotheeeer/library-management/internal/http/handlers/books/list"
	bookremove "github.com/magabrotheeeer/library-management/internal/http/handlers/books/remove"
	bookupdate "github.com/magabrotheeeer/library-management/internal/http/handlers/books/update"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/health"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/loans/giveback"
	"github.com/magabrotheeeer/library-management/internal/http/handlers/loans/issue"
	loanlist "github.com/magabrotheeeer/library-management/internal/http/handlers/loans/list"
	loanread "github.com/magabrotheeeer/library-management/internal/http/handlers/loans/read"
	usercreate "github.com/magabrotheeeer/library-management/internal/http/handlers/users/create"
	userlist "github.com/magabrotheeeer/library-management/internal/http/handlers/users/list"
	userremove "github.com/magabrotheeeer/library-management/internal/http/handlers/users/remove"
	"github.com/magabrotheeeer/library-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// BookService операции над каталогом книг.
type BookService interface {
	booklist.Service
	bookcreate.Service
	bookupdate.Service
	bookremove.Service
}

// LoanService операции над выдачами.
type LoanService interface {
	loanlist.Service
	loanread.Service
	issue.Service
	giveback.Service
}

// UserService администрирование пользователей.
type UserService interface {
	userlist.Service
	userremove.Service
}

// AuthService клиент сервиса авторизации.
type AuthService interface {
	login.Service
	register.Service
	middlewarectx.TokenValidator
}

// Services зависимости обработчиков.
type Services struct {
	Books  BookService
	Loans  LoanService
	Users  UserService
	Auth   AuthService
	Health health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services, cfg config.HTTPServer) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.Metrics,
	)

	r.Route("/api", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/books", booklist.New(logger, s.Books).ServeHTTP)
		r.Get("/health", health.New(logger, s.Health).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst))
			r.Post("/users/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/users/login", login.New(logger, s.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))

			r.Get("/issued-books", loanlist.New(logger, s.Loans).ServeHTTP)
			r.Get("/issued-books/{id}", loanread.New(logger, s.Loans).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))

				r.Post("/books", bookcreate.New(logger, s.Books).ServeHTTP)
				r.Put("/books/{id}", bookupdate.New(logger, s.Books).ServeHTTP)
				r.Delete("/books/{id}", bookremove.New(logger, s.Books).ServeHTTP)

				r.Post("/issued-books", issue.New(logger, s.Loans).ServeHTTP)
				r.Put("/issued-books/{id}/return", giveback.New(logger, s.Loans).ServeHTTP)

				r.Get("/users", userlist.New(logger, s.Users).ServeHTTP)
				r.Post("/users", usercreate.New(logger, s.Auth).ServeHTTP)
				r.Delete("/users/{id}", userremove.New(logger, s.Users).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
