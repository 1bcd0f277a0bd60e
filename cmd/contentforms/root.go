package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-contentforms"
	"github.com/goliatone/go-contentforms/internal/config"
	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/quickfill"
	"github.com/goliatone/go-contentforms/pkg/renderers/tui"
	"github.com/goliatone/go-contentforms/pkg/schema"
)

// app carries state shared by the subcommands once the root pre-run has
// loaded the configuration.
type app struct {
	cfgFile  string
	formsDir string
	logLevel string

	manager  *config.Manager
	level    slog.LevelVar
	logger   *slog.Logger
	logSink  io.Writer
	store    *schema.Store
	driver   tui.PromptDriver
	newGen   func(config.QuickFillConfig) (quickfill.Generator, error)
	onServed func(addr string)
}

func newApp() *app {
	return &app{
		logSink: os.Stderr,
		newGen:  newGenerator,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "contentforms",
		Short: "Schema-driven content forms with AI quick-fill",
		Long: `contentforms serves and fills the Brand Voice and Story Element forms,
and any other form declared in YAML.

Surfaces:
  - serve   HTTP session API plus an HTML modal per form
  - fill    interactive terminal session that prints the submitted payload
  - render  one-shot HTML rendering of a form
  - schema  declared forms as YAML or JSON
  - openapi the HTTP API description`,
		Version:       gitRelease,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(
		&a.cfgFile, "config", "", "config file (default: ./contentforms.yaml or ~/.contentforms/contentforms.yaml)",
	)
	root.PersistentFlags().StringVar(
		&a.formsDir, "forms-dir", "", "directory of form declarations overriding the embedded ones",
	)
	root.PersistentFlags().StringVar(
		&a.logLevel, "log-level", "", "log level: debug, info, warn or error",
	)

	root.AddCommand(
		newServeCmd(a),
		newFillCmd(a),
		newRenderCmd(a),
		newSchemaCmd(a),
		newOpenAPICmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration, applies flag overrides, builds the logger and
// loads the form declarations.
func (a *app) load(cmd *cobra.Command) error {
	manager, err := config.NewManager(a.cfgFile)
	if err != nil {
		return err
	}
	if a.formsDir != "" {
		if err := manager.Set("forms.dir", a.formsDir); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		if err := manager.Set("log.level", a.logLevel); err != nil {
			return err
		}
	}
	a.manager = manager

	cfg := manager.Get()
	a.level.Set(cfg.Log.SlogLevel())
	a.logger = slog.New(cfg.Log.Handler(a.logSink, &a.level))
	manager.SetLogger(a.logger)
	manager.OnChange(func(next *config.Config) {
		a.level.Set(next.Log.SlogLevel())
	})
	if used := manager.ConfigFileUsed(); used != "" {
		a.logger.Debug("config loaded", "file", used)
	}

	store, err := contentforms.LoadStore(cfg.Forms.Dir)
	if err != nil {
		return fmt.Errorf("load forms: %w", err)
	}
	a.store = store
	return nil
}

// formOptions are applied to every form opened by a subcommand.
func (a *app) formOptions(generator quickfill.Generator) []form.Option {
	cfg := a.manager.Get()
	return []form.Option{
		form.WithLogger(a.logger),
		form.WithGenerator(generator),
		form.WithResetOnOpen(cfg.Forms.ResetOnOpen),
		form.WithEditGuard(cfg.Forms.EditGuard),
	}
}

// newGenerator selects the quick-fill backend named by the configuration.
func newGenerator(cfg config.QuickFillConfig) (quickfill.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return quickfill.NewOpenAI(quickfill.OpenAIConfig{
			APIKey:     cfg.ResolvedAPIKey(),
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			MaxRetries: cfg.MaxRetries,
			Timeout:    cfg.Timeout,
		})
	default:
		var opts []quickfill.MockOption
		switch {
		case cfg.Delay > 0:
			opts = append(opts, quickfill.WithDelay(cfg.Delay))
		case cfg.Delay < 0:
			opts = append(opts, quickfill.WithDelay(0))
		}
		return quickfill.NewMock(opts...), nil
	}
}
