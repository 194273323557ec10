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
	App      ApplicationConfig `yaml:"app"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Uploads  UploadsConfig     `yaml:"uploads"`
	Auth     AuthConfig        `yaml:"auth"`
	AI       AIConfig          `yaml:"ai"`
	Advisory AdvisoryConfig    `yaml:"advisory"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Uploads.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	return c.Advisory.Validate()
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

// SQLiteConfig holds the vault database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// UploadsConfig holds the path to the uploaded-documents directory.
type UploadsConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the uploads configuration.
func (c *UploadsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
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

// AIConfig holds the AI gateway connection settings. An empty APIKey
// disables all gateway-backed features (extraction, chat, translation,
// advisory warnings); the rest of the service works without them.
type AIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	ChatModel      string `yaml:"chat_model"`
	ExtractModel   string `yaml:"extract_model"`
	TranslateModel string `yaml:"translate_model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Validate validates the AI gateway configuration.
func (c *AIConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.TimeoutSeconds, validation.Min(1), validation.Max(300)),
	); err != nil {
		return err
	}
	if c.APIKey != "" && c.BaseURL == "" {
		return fmt.Errorf("ai: api_key is set but base_url is empty")
	}
	return nil
}

// Enabled returns true when the gateway is configured.
func (c *AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// Timeout returns the gateway call timeout.
func (c *AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AdvisoryConfig tunes the best-effort form advisory pass.
type AdvisoryConfig struct {
	// MaxLines caps how many advisory lines are merged into the warnings.
	MaxLines int `yaml:"max_lines"`
	// DedupePrefix is the prefix length for the duplicate heuristic.
	DedupePrefix   int `yaml:"dedupe_prefix"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Validate validates the advisory configuration.
func (c *AdvisoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxLines, validation.Min(1), validation.Max(10)),
		validation.Field(&c.DedupePrefix, validation.Min(5), validation.Max(100)),
		validation.Field(&c.TimeoutSeconds, validation.Min(1), validation.Max(120)),
	)
}

// Timeout returns the advisory call timeout.
func (c *AdvisoryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
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
		SQLite: SQLiteConfig{
			Path: "./formvault.db",
		},
		Uploads: UploadsConfig{
			Path: "./uploads",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		AI: AIConfig{
			BaseURL:        "https://ai.gateway.lovable.dev/v1",
			ChatModel:      "google/gemini-2.5-flash",
			ExtractModel:   "google/gemini-2.5-pro",
			TranslateModel: "google/gemini-2.5-flash-lite",
			TimeoutSeconds: 30,
		},
		Advisory: AdvisoryConfig{
			MaxLines:       3,
			DedupePrefix:   20,
			TimeoutSeconds: 15,
		},
	}
}
