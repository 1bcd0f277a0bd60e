package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. CONTENTFORMS_SERVER_ADDR.
const EnvPrefix = "CONTENTFORMS"

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
	logger    *slog.Logger
}

// NewManager creates a config manager and loads the initial config. An empty
// cfgFile searches ./contentforms.yaml and $HOME/.contentforms; a missing
// file is not an error.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		v:      viper.New(),
		logger: slog.New(slog.DiscardHandler),
	}
	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}
	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	cm.v.SetDefault("log.level", defaults.Log.Level)
	cm.v.SetDefault("log.format", defaults.Log.Format)
	cm.v.SetDefault("server.addr", defaults.Server.Addr)
	cm.v.SetDefault("server.base_path", defaults.Server.BasePath)
	cm.v.SetDefault("server.max_sessions", defaults.Server.MaxSessions)
	cm.v.SetDefault("server.wait_timeout", defaults.Server.WaitTimeout)
	cm.v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	cm.v.SetDefault("forms.dir", defaults.Forms.Dir)
	cm.v.SetDefault("forms.reset_on_open", defaults.Forms.ResetOnOpen)
	cm.v.SetDefault("forms.edit_guard", defaults.Forms.EditGuard)
	cm.v.SetDefault("quickfill.provider", defaults.QuickFill.Provider)
	cm.v.SetDefault("quickfill.delay", defaults.QuickFill.Delay)
	cm.v.SetDefault("quickfill.api_key", defaults.QuickFill.APIKey)
	cm.v.SetDefault("quickfill.model", defaults.QuickFill.Model)
	cm.v.SetDefault("quickfill.base_url", defaults.QuickFill.BaseURL)
	cm.v.SetDefault("quickfill.max_retries", defaults.QuickFill.MaxRetries)
	cm.v.SetDefault("quickfill.timeout", defaults.QuickFill.Timeout)
	cm.v.SetDefault("theme.name", defaults.Theme.Name)
	cm.v.SetDefault("theme.variant", defaults.Theme.Variant)
	cm.v.SetDefault("theme.assets_path", defaults.Theme.AssetsPath)
	cm.v.SetDefault("theme.stylesheet", defaults.Theme.Stylesheet)
	cm.v.SetDefault("render.engine", defaults.Render.Engine)

	cm.v.SetEnvPrefix(EnvPrefix)
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.v.AutomaticEnv()

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("contentforms")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		cm.v.AddConfigPath("$HOME/.contentforms")
	}

	if err := cm.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: read config file: %w", err)
		}
	}
	return nil
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetLogger sets the logger used to report reload failures.
func (cm *Manager) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	cm.mu.Lock()
	cm.logger = logger
	cm.mu.Unlock()
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFileUsed reports the file the configuration was read from, if any.
func (cm *Manager) ConfigFileUsed() string {
	return cm.v.ConfigFileUsed()
}

// Set overrides a key, typically from a command-line flag, and reloads.
func (cm *Manager) Set(key string, value any) error {
	cm.v.Set(key, value)
	return cm.Reload()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// Reload re-reads the current viper state and notifies callbacks. An invalid
// configuration keeps the previous one.
func (cm *Manager) Reload() error {
	cfg, err := cm.load()
	if err != nil {
		return err
	}

	cm.mu.Lock()
	cm.config = cfg
	callbacks := make([]func(*Config), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
	return nil
}

// WatchConfig enables hot-reloading of the config file.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		if err := cm.Reload(); err != nil {
			cm.mu.RLock()
			logger := cm.logger
			cm.mu.RUnlock()
			logger.Warn("config reload failed", "file", e.Name, "op", e.Op.String(), "error", err)
		}
	})
	cm.v.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envPattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("config: marshal defaults: %w", err)
	}
	header := []byte(`# contentforms configuration
# Environment variables override keys with the CONTENTFORMS_ prefix,
# e.g. CONTENTFORMS_SERVER_ADDR=:9090. The API key uses ${ENV_VAR} syntax.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
