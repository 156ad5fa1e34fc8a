package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/starford/algiz/internal/models"
)

// Defaults for a local Ollama backend.
const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "llama3.1"
)

// ClientConfig configures the backend client. Zero values fall back to
// the package defaults.
type ClientConfig struct {
	Host         string
	Model        string
	PromptBudget int
}

// Client talks to an Ollama-compatible HTTP backend. The HTTP client
// carries no timeout: cancellation comes from the caller's context,
// and a hung backend call blocks the batch until the backend answers.
type Client struct {
	client *http.Client
	host   string
	model  string
	budget int
}

var _ Summarizer = (*Client)(nil)

// NewClient creates a backend client, filling unset fields of cfg with
// defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.PromptBudget <= 0 {
		cfg.PromptBudget = DefaultPromptBudget
	}
	return &Client{
		client: &http.Client{},
		host:   strings.TrimSuffix(cfg.Host, "/"),
		model:  cfg.Model,
		budget: cfg.PromptBudget,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Summarize renders the layer prompt for text and submits it to the
// backend. Backend failures surface as *BackendError carrying the
// backend's diagnostic text; no retry is attempted here.
func (c *Client) Summarize(ctx context.Context, text string, layer models.Layer) (string, error) {
	prompt, err := buildPrompt(text, layer, c.budget)
	if err != nil {
		return "", err
	}
	return c.generate(ctx, prompt)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("summarize: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("summarize: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &BackendError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", &BackendError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(data))}
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return "", &BackendError{Status: resp.StatusCode, Detail: fmt.Sprintf("invalid response: %v", err)}
	}
	return strings.TrimSpace(gen.Response), nil
}

// Ping checks that the backend answers at all. Callers use it for
// startup diagnostics; indexing does not gate on it.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("summarize: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &BackendError{Detail: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &BackendError{Status: resp.StatusCode, Detail: resp.Status}
	}
	return nil
}
