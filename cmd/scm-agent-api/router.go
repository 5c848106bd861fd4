// Package main provides the API router setup.
package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/supplyhub/scm-assistant/cmd/scm-agent-api/handlers"
	"github.com/supplyhub/scm-assistant/internal/app"
	"github.com/supplyhub/scm-assistant/internal/observability"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, application *app.App) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(application.Config.Server.ReadTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		indexes := make(map[string]bool, 3)
		for _, domain := range []string{"default", "supply", "demand"} {
			key := domain
			if domain == "default" {
				key = ""
			}
			indexes[domain] = application.Engine.HasCollection(key)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":         "healthy",
			"service":        "scm-assistant",
			"glossary_terms": application.Glossary.Len(),
			"indexes":        indexes,
		})
	})

	r.Get("/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	queryHandler := handlers.NewQueryHandler(logger, application.Agent)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", queryHandler.Query)
	})

	return r
}
