/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the game frontend

ROUTE GROUPS:
  /api/presets       Named game definitions
  /api/scenarios/*   Scripted demo sessions
  /api/games/*       Sessions, commands and queries
  /healthz           Liveness probe

SECURITY NOTE:
  No authentication. Session ids are random UUIDs and act as bearer tokens.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/avalanche/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/presets", h.ListPresets)

		r.Get("/scenarios", h.ListScenarios)
		r.Post("/scenarios/{id}", h.LoadScenario)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.ListGames)
			r.Post("/", h.CreateGame)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetGame)
				r.Delete("/", h.DeleteGame)

				// Commands
				r.Post("/payments", h.Pay)
				r.Post("/earnings", h.CompleteEarning)
				r.Post("/advance/payday", h.AdvanceToNextPayday)
				r.Post("/advance/due-date", h.AdvanceToNextDueDate)
				r.Post("/pay-everything", h.PayEverything)
				r.Post("/reset", h.ResetGame)

				// Queries
				r.Get("/balances", h.GetBalances)
				r.Get("/recommendation", h.GetRecommendation)
				r.Get("/analysis", h.GetAnalysis)
				r.Get("/snapshots", h.GetHistory)
				r.Get("/audit", h.GetAudit)
			})
		})
	})

	return r
}
