package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/starford/algiz/internal/index"
	"github.com/starford/algiz/internal/summarize"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(db *index.DB, summ summarize.Summarizer, authEnabled bool, token string) chi.Router {
	h := NewHandler(db, summ)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Summarization shim.
	r.Post("/summarize", h.Summarize)

	// Public-layer search.
	r.Get("/search", h.Search)

	return r
}
