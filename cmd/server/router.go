package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/tutorgen/internal/api"
	apiMiddleware "github.com/phrazzld/tutorgen/internal/api/middleware"
	"github.com/phrazzld/tutorgen/internal/api/shared"
)

// setupRouter creates the router with all routes and middleware. Every
// /api route requires a bearer token when authentication is enabled.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	taskHandler := api.NewTaskHandler(app.feedback, app.queue, app.archive)
	generationHandler := api.NewGenerationHandler(api.GenerationServices{
		Questions:  app.questions,
		Challenges: app.challenges,
		Reports:    app.reports,
		Evaluator:  app.evaluator,
		Contents:   app.contents,
	})
	contentHandler := api.NewContentHandler(app.emitter, app.progression)
	registryHandler := api.NewRegistryHandler(app.registries)

	r.Route("/api", func(r chi.Router) {
		if app.tokens != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(app.tokens).Authenticate)
		}

		r.Post("/feedback-tasks", taskHandler.CreateFeedbackTask)
		r.Get("/feedback-tasks/stats", taskHandler.GetStats)
		r.Get("/feedback-tasks/{id}", taskHandler.GetTask)

		r.Post("/questions", generationHandler.CreateQuestions)
		r.Post("/challenges", generationHandler.CreateChallenges)
		r.Post("/reports", generationHandler.CreateReport)
		r.Post("/answers/evaluate", generationHandler.EvaluateAnswer)
		r.Post("/evaluations", generationHandler.EvaluateWork)
		r.Post("/contents/classify", generationHandler.ClassifyContent)

		r.Post("/contents/{id}/complete", contentHandler.CompleteContent)
		r.Get("/contents/{id}/progress", contentHandler.GetProgress)

		r.Get("/registry/{collection}", registryHandler.ListEntries)
		r.Get("/registry/{collection}/{id}", registryHandler.GetEntry)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, api.HealthResponse{Status: "ok"})
	})

	return r
}
