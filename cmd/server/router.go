package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/studybuddy-api/internal/api"
	apiMiddleware "github.com/phrazzld/studybuddy-api/internal/api/middleware"
	"github.com/phrazzld/studybuddy-api/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewRateLimiter(app.config.Server.RateLimitPerMinute, app.logger).Middleware)

	sessionHandler := api.NewSessionHandler(app.sessionService, app.logger)
	flashcardHandler := api.NewFlashcardHandler(app.flashcardService, app.sessionService, app.logger)
	sessionMiddleware := apiMiddleware.NewSessionMiddleware(app.sessionService, app.logger)

	healthConfig := api.HealthConfig{
		Version:    Version,
		Database:   app.db,
		Sessions:   app.sessionService,
		Strategies: app.strategies,
	}
	if app.cache != nil {
		healthConfig.Cache = api.PingFunc(app.cache.Ping)
	}
	healthHandler := api.NewHealthHandler(healthConfig, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Session endpoints
		r.Post("/session", sessionHandler.CreateSession)
		r.Get("/session/{id}", sessionHandler.GetSession)
		r.Delete("/session/{id}", sessionHandler.DeleteSession)
		r.Post("/session/{id}/extend", sessionHandler.ExtendSession)

		// Session-scoped routes
		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware.Resolve)

			r.Post("/process-notes", flashcardHandler.ProcessNotes)

			r.Get("/flashcards", flashcardHandler.ListSets)
			r.Get("/flashcards/{id}", flashcardHandler.GetSet)
			r.Put("/flashcards/{id}", flashcardHandler.UpdateSet)
			r.Delete("/flashcards/{id}", flashcardHandler.DeleteSet)
			r.Post("/flashcards/{id}/study", flashcardHandler.RecordStudy)
			r.Get("/flashcards/{id}/statistics", flashcardHandler.Statistics)
		})
	})

	r.Get("/health", healthHandler.Health)
	r.Get("/health/detailed", healthHandler.Detailed)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
