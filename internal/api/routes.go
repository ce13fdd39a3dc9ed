package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/seasonal-greetings/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET  /health                         liveness and store check
//	GET  /get-image                      next seasonal image (JPEG)
//	GET  /get-message                    next rotating message
//	GET  /greeting                       caption plus image link
//	GET  /admin/status                   state snapshot (API key)
//	POST /admin/tracker/{season}/reset   clear a season's pool (API key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	baseMiddleware := ChainMiddleware(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)
	r.Use(baseMiddleware)

	// ==========================================================================
	// Public routes
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)
	r.Get("/get-image", handlers.GetImage)
	r.Get("/get-message", handlers.GetMessage)
	r.Get("/greeting", handlers.Greeting)

	// ==========================================================================
	// Admin routes (API key)
	// ==========================================================================
	r.Route("/admin", func(r chi.Router) {
		r.Use(AuthMiddleware(cfg, logger))
		r.Get("/status", handlers.Status)
		r.Post("/tracker/{season}/reset", handlers.ResetSeason)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	return r
}
