package routers

import (
	"github.com/go-chi/chi/v5"

	"tutor/ai/internal/handlers"
	"tutor/ai/internal/middleware"
	"tutor/ai/internal/models"
)

func TutorRoutes(router chi.Router, tutorHandler *handlers.TutorHandler, feedbackHandler *handlers.FeedbackHandler) {
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/languages", tutorHandler.LanguagesHandler)
		r.Get("/start", tutorHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.ChatRequest]()).Post("/chat", tutorHandler.ChatHandler)

		r.Route("/feedback", func(r chi.Router) {
			r.Get("/stats", feedbackHandler.GetFeedbackStats)
			r.Get("/export", feedbackHandler.ExportFeedback)
			r.With(middleware.ValidateRequest[*models.FeedbackRequest]()).Post("/{request_id}", feedbackHandler.SubmitFeedback)
		})
	})
}
