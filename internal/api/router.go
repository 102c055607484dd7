package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aakanksha-singh-hub/QueryBot/internal/api/handler"
	customMiddleware "github.com/aakanksha-singh-hub/QueryBot/internal/api/middleware"
	"github.com/aakanksha-singh-hub/QueryBot/internal/config"
	"github.com/aakanksha-singh-hub/QueryBot/internal/demo"
)

// NewRouter creates and configures the demo backend's HTTP router.
func NewRouter(cfg *config.Config, warehouse *demo.Warehouse) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	queryHandler := handler.NewQueryHandler(warehouse)

	r.Get("/health", handler.HealthCheck(warehouse))
	r.Get("/schema", handler.Schema(warehouse))
	r.Post("/transcribe", handler.Transcribe)

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", queryHandler.Execute)
		r.Post("/suggestions", handler.Suggestions)
		r.Post("/export", handler.Export)
		r.Post("/synthesize_speech", handler.Synthesize)
	})

	return r
}
