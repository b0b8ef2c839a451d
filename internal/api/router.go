package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Knowledge base routes
		r.Post("/documents", apiHandler.UploadDocumentsHandler)
		r.Post("/documents/text", apiHandler.AddTextHandler)
		r.Get("/documents/stats", apiHandler.StatsHandler)
		r.Delete("/documents", apiHandler.DeleteAllDocumentsHandler)

		// Session routes
		r.Post("/sessions", apiHandler.CreateSessionHandler)
		r.Get("/sessions/{sessionID}", apiHandler.GetSessionHandler)
		r.Post("/sessions/{sessionID}/messages", apiHandler.PostMessageHandler)
		r.Post("/sessions/{sessionID}/clear", apiHandler.ClearSessionHandler)
		r.Delete("/sessions/{sessionID}", apiHandler.DeleteSessionHandler)
	})

	return r
}
