package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stencilhq/stencil-api/internal/api"
	apiMiddleware "github.com/stencilhq/stencil-api/internal/api/middleware"
	"github.com/stencilhq/stencil-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes
// and middleware. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling
	r.Use(apiMiddleware.MetricsMiddleware(app.metrics))

	templateHandler := api.NewTemplateHandler(app.templateService, app.logger)

	// Register routes
	r.Route("/test/template", func(r chi.Router) {
		r.Get("/", templateHandler.ListTemplates)
		r.Post("/", templateHandler.CreateTemplate)
		r.Get("/{id}", templateHandler.GetTemplate)
		r.Put("/{id}", templateHandler.UpdateTemplate)
		r.Delete("/{id}", templateHandler.DeleteTemplate)
		r.Get("/status/{status}", templateHandler.GetTemplatesByStatus)
	})

	// Health check endpoint
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", app.metrics.Handler())

	return r
}
