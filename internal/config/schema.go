package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
)

// Config is the process configuration of the contentforms binary.
type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Forms     FormsConfig     `mapstructure:"forms" yaml:"forms"`
	QuickFill QuickFillConfig `mapstructure:"quickfill" yaml:"quickfill"`
	Theme     ThemeConfig     `mapstructure:"theme" yaml:"theme"`
	Render    RenderConfig    `mapstructure:"render" yaml:"render"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

// ServerConfig configures `contentforms serve`.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	BasePath        string        `mapstructure:"base_path" yaml:"base_path"`
	MaxSessions     int           `mapstructure:"max_sessions" yaml:"max_sessions"`
	WaitTimeout     time.Duration `mapstructure:"wait_timeout" yaml:"wait_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// FormsConfig controls where form declarations come from and how forms behave.
type FormsConfig struct {
	Dir         string `mapstructure:"dir" yaml:"dir"` // overrides embedded forms with the same id
	ResetOnOpen bool   `mapstructure:"reset_on_open" yaml:"reset_on_open"`
	EditGuard   bool   `mapstructure:"edit_guard" yaml:"edit_guard"`
}

// QuickFillConfig selects the generation backend.
type QuickFillConfig struct {
	Provider   string        `mapstructure:"provider" yaml:"provider"` // mock or openai
	Delay      time.Duration `mapstructure:"delay" yaml:"delay"`       // mock only; 0 keeps the per-form delay, negative disables it
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	Model      string        `mapstructure:"model" yaml:"model"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ThemeConfig describes a single theme applied to rendered forms.
type ThemeConfig struct {
	Name       string            `mapstructure:"name" yaml:"name"`
	Variant    string            `mapstructure:"variant" yaml:"variant"`
	Tokens     map[string]string `mapstructure:"tokens" yaml:"tokens"`
	AssetsPath string            `mapstructure:"assets_path" yaml:"assets_path"`
	Stylesheet string            `mapstructure:"stylesheet" yaml:"stylesheet"`
}

// RenderConfig configures the HTML renderer.
type RenderConfig struct {
	Engine string `mapstructure:"engine" yaml:"engine"` // pongo2 or go-template
}

const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
)

const (
	EnginePongo2     = "pongo2"
	EngineGoTemplate = "go-template"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:            ":8080",
			BasePath:        "/",
			MaxSessions:     1024,
			WaitTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		QuickFill: QuickFillConfig{
			Provider:   ProviderMock,
			APIKey:     "${OPENAI_API_KEY}",
			Model:      "gpt-4o-mini",
			MaxRetries: 3,
			Timeout:    60 * time.Second,
		},
		Render: RenderConfig{Engine: EnginePongo2},
	}
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.QuickFill.Provider) {
	case ProviderMock, ProviderOpenAI:
	default:
		return fmt.Errorf("config: unknown quickfill provider %q", c.QuickFill.Provider)
	}
	switch strings.ToLower(c.Render.Engine) {
	case "", EnginePongo2, EngineGoTemplate:
	default:
		return fmt.Errorf("config: unknown render engine %q", c.Render.Engine)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	return nil
}

// Handler builds the slog handler described by the log settings. A nil level
// uses the configured one; pass a *slog.LevelVar to adjust it at runtime.
func (c LogConfig) Handler(w io.Writer, level slog.Leveler) slog.Handler {
	if level == nil {
		level = c.SlogLevel()
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SlogLevel returns the configured level, or info when it does not parse.
func (c LogConfig) SlogLevel() slog.Level {
	level, err := c.level()
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", c.Level, err)
	}
	return level, nil
}

// ResolvedAPIKey expands ${ENV_VAR} references in the API key.
func (c QuickFillConfig) ResolvedAPIKey() string {
	return ResolveEnvVars(c.APIKey)
}

// Manifest returns the theme as a go-theme manifest, or nil when no theme is
// configured.
func (c ThemeConfig) Manifest() *theme.Manifest {
	if c.Name == "" {
		return nil
	}
	manifest := &theme.Manifest{
		Name:    c.Name,
		Version: "config",
		Tokens:  make(map[string]string, len(c.Tokens)),
	}
	for key, value := range c.Tokens {
		manifest.Tokens[key] = value
	}
	if c.Variant != "" {
		manifest.Variants = map[string]theme.Variant{c.Variant: {}}
	}
	if c.Stylesheet != "" {
		manifest.Assets = theme.Assets{
			Prefix: c.AssetsPath,
			Files:  map[string]string{"stylesheet": c.Stylesheet},
		}
	}
	return manifest
}
