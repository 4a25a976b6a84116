package api

import (
	"net/http"

	"github.com/ayria/accounts-api/internal/api/handlers"
	"github.com/ayria/accounts-api/internal/api/middleware"
	"github.com/ayria/accounts-api/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

func NewRouter(services *service.Services, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	userHandler := handlers.NewUserHandler(services.Auth)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.Create)
		r.Post("/login", userHandler.Login)
		r.Post("/token", userHandler.Token)

		// Routes requiring a verified access token
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Delete("/logout", userHandler.Logout)
			r.Get("/me", userHandler.Me)
		})
	})

	return r
}
