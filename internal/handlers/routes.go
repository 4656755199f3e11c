package handlers

import (
	"go_4_vocab_quiz/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes は /api/v1 配下のルーティングを r に登録します
func RegisterRoutes(r chi.Router, sessionHandler *SessionHandler, vocabularyHandler *VocabularyHandler) {
	r.Route("/api/v1", func(r chi.Router) {
		// Vocabulary routes
		r.Route("/vocabularies", func(r chi.Router) {
			r.Get("/", vocabularyHandler.GetVocabularies)
			r.Get("/{"+ListIDParam+"}", vocabularyHandler.GetVocabulary)
		})

		// Session routes
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.PostSession)
			r.Route("/{"+middleware.SessionIDParam+"}", func(r chi.Router) {
				r.Use(middleware.SessionContextMiddleware)
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.DeleteSession)
				r.Post("/events", sessionHandler.PostEvent)
			})
		})
	})
}
