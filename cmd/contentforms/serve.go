package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-contentforms"
	"github.com/goliatone/go-contentforms/components/formapi"
	"github.com/goliatone/go-contentforms/internal/config"
	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/render"
	"github.com/goliatone/go-contentforms/pkg/renderers/vanilla"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the contentforms HTTP server.

The server provides:
  - <base>/api/contentforms/...          JSON session API and HTML modals
  - <base>/api/contentforms/openapi.json API description
  - <base>/assets/contentforms.css       bundled stylesheet
  - /healthz                             liveness check

Examples:
  contentforms serve                 # listen on :8080
  contentforms serve --addr :3000    # custom address`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				if err := a.manager.Set("server.addr", addr); err != nil {
					return err
				}
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (overrides server.addr)")
	return cmd
}

// serve blocks until ctx is cancelled or the listener fails.
func (a *app) serve(ctx context.Context) error {
	cfg := a.manager.Get()

	generator, err := a.newGen(cfg.QuickFill)
	if err != nil {
		return fmt.Errorf("quickfill: %w", err)
	}

	html, err := vanilla.New(vanilla.WithTemplateEngine(cfg.Render.Engine))
	if err != nil {
		return err
	}

	fns := []formapi.OptionFn{
		formapi.WithStore(a.store),
		formapi.WithRenderer(html),
		formapi.WithGenerator(generator),
		formapi.WithLogger(a.logger),
		formapi.WithMaxSessions(cfg.Server.MaxSessions),
		formapi.WithWaitTimeout(cfg.Server.WaitTimeout),
		formapi.WithFormOptions(
			form.WithResetOnOpen(cfg.Forms.ResetOnOpen),
			form.WithEditGuard(cfg.Forms.EditGuard),
		),
		formapi.WithInfo("Content Forms API", gitRelease),
		formapi.WithOnSubmit(func(formID, sessionID string, payload form.Payload) {
			a.logger.Info("form submitted", "form", formID, "session", sessionID, "name", payload.String("name"), "keys", payload.Len())
		}),
	}
	if manifest := cfg.Theme.Manifest(); manifest != nil {
		selector, err := render.NewStaticSelector(manifest.Name, cfg.Theme.Variant, manifest)
		if err != nil {
			return err
		}
		fns = append(fns, formapi.WithTheme(selector, manifest.Name, cfg.Theme.Variant))
	}

	component, err := formapi.New(fns...)
	if err != nil {
		return err
	}
	defer component.Close()

	mux := http.NewServeMux()
	apiPath, err := component.RegisterRoutes(mux, cfg.Server.BasePath)
	if err != nil {
		return err
	}
	assetsPath := joinPath(cfg.Server.BasePath, "/assets")
	mux.Handle(assetsPath+"/", http.StripPrefix(assetsPath, http.FileServerFS(contentforms.AssetsFS())))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	listener, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}
	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.manager.OnChange(func(next *config.Config) {
		if next.Server != cfg.Server {
			a.logger.Warn("server settings changed; restart to apply them")
		}
	})
	if a.manager.ConfigFileUsed() != "" {
		a.manager.WatchConfig()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", "addr", listener.Addr().String(), "api", apiPath, "forms", a.store.IDs())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	if a.onServed != nil {
		a.onServed(listener.Addr().String())
	}

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", "error", err)
	}
	a.logger.Info("server stopped")
	return nil
}

func joinPath(base, suffix string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base != "" && !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return base + suffix
}
