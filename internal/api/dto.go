package api

import "github.com/starford/algiz/internal/models"

// SummarizeRequest is the request body for the summarization shim.
type SummarizeRequest struct {
	Text string `json:"text" example:"Meeting with the team about Q3 planning" validate:"required"`
	Mode string `json:"mode" example:"public" enums:"public,private"`
}

// SummarizeResponse wraps the generated summary.
type SummarizeResponse struct {
	Summary string `json:"summary" validate:"required"`
}

// SearchResult is a single public-layer hit (aliased from the domain layer).
type SearchResult = models.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
