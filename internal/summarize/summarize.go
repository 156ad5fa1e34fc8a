// Package summarize wraps a local generative-text backend behind the
// two fixed prompt templates that produce the private and public
// summary layers.
package summarize

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/starford/algiz/internal/models"
)

// Prompt templates for the two layers. The public template instructs
// the model to redact names and identifiers; nothing downstream
// verifies the returned summary, so public-layer redaction is
// best-effort and model-dependent, not a guarantee.
const (
	privatePrompt = "Summarize the following text in 5-7 bullet points. Keep all key facts.\n\n"
	publicPrompt  = "Summarize the following text in 3-5 bullet points, redacting sensitive details and removing specific names or identifiers.\n\n"
)

// DefaultPromptBudget caps how much source text is submitted to the
// backend. Longer documents silently lose trailing content.
const DefaultPromptBudget = 6000

// Summarizer produces a summary of text shaped for the given layer.
type Summarizer interface {
	Summarize(ctx context.Context, text string, layer models.Layer) (string, error)
}

// BackendError reports a failed call to the generative backend. Status
// is the HTTP status code, or 0 when the backend was unreachable.
type BackendError struct {
	Status int
	Detail string
}

func (e *BackendError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("summarize backend unreachable: %s", e.Detail)
	}
	return fmt.Sprintf("summarize backend status %d: %s", e.Status, e.Detail)
}

// buildPrompt truncates text to budget and prepends the layer prompt.
func buildPrompt(text string, layer models.Layer, budget int) (string, error) {
	switch layer {
	case models.LayerPrivate:
		return privatePrompt + truncate(text, budget), nil
	case models.LayerPublic:
		return publicPrompt + truncate(text, budget), nil
	}
	return "", fmt.Errorf("summarize: unknown layer %q", layer)
}

// truncate clips s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
