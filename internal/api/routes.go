package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router. The CORS gate and the per-IP rate limit
// run ahead of any business logic; everything behind them is a plain handler.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check (no rate limit)
	r.Get("/health", h.HealthCheck)

	// Public site key for the front-end challenge widget
	r.Get("/recaptcha-site-key", h.GetSiteKey)

	// The submission endpoint sits behind the per-IP rate limit
	r.Group(func(r chi.Router) {
		r.Use(h.RateLimit)
		r.Post("/submit-contact", h.SubmitContact)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	return r
}
