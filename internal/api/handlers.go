package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starford/algiz/internal/index"
	"github.com/starford/algiz/internal/models"
	"github.com/starford/algiz/internal/summarize"
)

// Handler holds API route handlers.
type Handler struct {
	db   *index.DB
	summ summarize.Summarizer
}

// NewHandler creates a new Handler.
func NewHandler(db *index.DB, summ summarize.Summarizer) *Handler {
	return &Handler{db: db, summ: summ}
}

// Summarize handles POST /api/summarize.
//
//	@Summary		Summarize text in public or private mode
//	@Tags			summarize
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SummarizeRequest	true	"Text to summarize"
//	@Success		200		{object}	SummarizeResponse
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/summarize [post]
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req struct {
		Text string `json:"text"`
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	layer, err := models.ParseLayer(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("mode must be 'public' or 'private'"))
		return
	}

	summary, err := h.summ.Summarize(r.Context(), req.Text, layer)
	if err != nil {
		var be *summarize.BackendError
		if errors.As(err, &be) {
			slog.Error("summarize backend failed", slog.String("error", be.Error()))
			writeJSON(w, http.StatusBadGateway, errorBody(be.Error()))
			return
		}
		slog.Error("summarize failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
	})
}

// Search handles GET /api/search.
//
//	@Summary		Keyword search over public-layer summaries
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search keyword"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.db.SearchPublic(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}
