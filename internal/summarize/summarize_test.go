package summarize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/starford/algiz/internal/models"
)

func TestBuildPromptPrivate(t *testing.T) {
	p, err := buildPrompt("note text", models.LayerPrivate, DefaultPromptBudget)
	if err != nil {
		t.Fatalf("buildPrompt: %v", err)
	}
	if !strings.HasPrefix(p, "Summarize the following text in 5-7 bullet points") {
		t.Errorf("private prompt starts with %q", p[:40])
	}
	if !strings.HasSuffix(p, "note text") {
		t.Errorf("prompt does not end with the source text: %q", p)
	}
}

func TestBuildPromptPublic(t *testing.T) {
	p, err := buildPrompt("note text", models.LayerPublic, DefaultPromptBudget)
	if err != nil {
		t.Fatalf("buildPrompt: %v", err)
	}
	if !strings.Contains(p, "redacting sensitive details") {
		t.Errorf("public prompt missing redaction instruction: %q", p)
	}
	if !strings.Contains(p, "3-5 bullet points") {
		t.Errorf("public prompt missing bullet range: %q", p)
	}
}

func TestBuildPromptUnknownLayer(t *testing.T) {
	if _, err := buildPrompt("x", models.Layer("secret"), 100); err == nil {
		t.Error("expected error for unknown layer")
	}
}

func TestBuildPromptBudget(t *testing.T) {
	long := strings.Repeat("a", 20000)
	p, err := buildPrompt(long, models.LayerPrivate, 6000)
	if err != nil {
		t.Fatalf("buildPrompt: %v", err)
	}
	if got := len(p) - len(privatePrompt); got > 6000 {
		t.Errorf("submitted text length = %d, want <= 6000", got)
	}
}

func TestTruncateShortInput(t *testing.T) {
	if got := truncate("short", 6000); got != "short" {
		t.Errorf("truncate = %q, want unchanged", got)
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	s := strings.Repeat("é", 10) // two bytes per rune
	got := truncate(s, 5)
	if len(got) > 5 {
		t.Errorf("len = %d, want <= 5", len(got))
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
}
