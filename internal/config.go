package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Vault      VaultConfig       `yaml:"vault"`
	SQLite     SQLiteConfig      `yaml:"sqlite"`
	Summarizer SummarizerConfig  `yaml:"summarizer"`
	Index      IndexConfig       `yaml:"index"`
	Auth       AuthConfig        `yaml:"auth"`
	Watch      WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Summarizer.Validate(); err != nil {
		return err
	}
	if err := c.Index.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig describes the note tree fed to the indexer.
type VaultConfig struct {
	// Roots are the directories scanned for indexable notes.
	Roots []string `yaml:"roots"`
	// Exclude lists path prefixes that are never indexed.
	Exclude []string `yaml:"exclude"`
	// Source is the origin tag stored on every document.
	Source string `yaml:"source"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	// Normalise empty source to the default tag.
	if c.Source == "" {
		c.Source = "vault"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Roots, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SummarizerConfig holds the generative backend settings.
type SummarizerConfig struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
	// PromptBudget caps how many characters of source text go into a
	// prompt. Zero means the adapter default.
	PromptBudget int `yaml:"prompt_budget"`
}

// Validate validates the summarizer configuration.
func (c *SummarizerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.PromptBudget, validation.Min(0)),
	)
}

// IndexConfig bounds what the store keeps and returns.
type IndexConfig struct {
	// SnapshotLimit caps the stored content snapshot per chunk.
	SnapshotLimit int `yaml:"snapshot_limit"`
	// QueryLimit is the default search result cap.
	QueryLimit int `yaml:"query_limit"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SnapshotLimit, validation.Min(0)),
		validation.Field(&c.QueryLimit, validation.Min(0)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// WatchConfig describes the relay poller.
type WatchConfig struct {
	// Files are the relay files to watch, by path.
	Files []string `yaml:"files"`
	// Inbox is the delivery directory; empty disables the inbox check.
	Inbox string `yaml:"inbox"`
	// IntervalSeconds is the poll period.
	IntervalSeconds int `yaml:"interval_seconds"`
	// TailLines is the preview length for change notices.
	TailLines int `yaml:"tail_lines"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.IntervalSeconds, validation.Min(0)),
		validation.Field(&c.TailLines, validation.Min(0)),
	)
}

// Interval returns the poll period as a duration.
func (c *WatchConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Roots:  []string{"./vault"},
			Source: "vault",
		},
		SQLite: SQLiteConfig{
			Path: "./algiz.db",
		},
		Summarizer: SummarizerConfig{
			Host:         "http://localhost:11434",
			Model:        "llama3.1",
			PromptBudget: 6000,
		},
		Index: IndexConfig{
			SnapshotLimit: 10000,
			QueryLimit:    10,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			IntervalSeconds: 2,
			TailLines:       5,
		},
	}
}
