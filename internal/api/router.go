package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lonepengu/backend/internal/api/handlers"
	"github.com/lonepengu/backend/internal/api/middleware"
	"github.com/lonepengu/backend/internal/config"
	"github.com/lonepengu/backend/internal/service"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.CORSOrigin))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	})

	authHandler := handlers.NewAuthHandler(services.Auth, cfg)
	userHandler := handlers.NewUserHandler(services.User, cfg)
	aiHandler := handlers.NewAIHandler(services.AIProxy)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Public: login and refresh carry their credentials in the body
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Bearer token required
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Codec))
				r.Post("/logout", authHandler.Logout)
				r.Get("/validate", authHandler.Validate)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(middleware.Auth(services.Codec))
			r.Get("/me", userHandler.Me)
			r.Put("/update", userHandler.Update)
			r.Get("/preferences", userHandler.GetPreferences)
			r.Put("/preferences", userHandler.UpdatePreferences)
			r.Get("/app-state", userHandler.GetAppState)
			r.Put("/app-state", userHandler.SaveAppState)
		})

		r.Route("/ai", func(r chi.Router) {
			r.Post("/proxy", aiHandler.Proxy)
		})
	})

	return r
}
