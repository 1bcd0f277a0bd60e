// Package contentforms is the top-level entry point of go-contentforms: it
// loads form declarations, opens forms and renders them through the
// orchestrator, mirroring the pieces under pkg/ for callers that want a single
// import.
package contentforms

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/orchestrator"
	"github.com/goliatone/go-contentforms/pkg/render"
	"github.com/goliatone/go-contentforms/pkg/renderers/tui"
	"github.com/goliatone/go-contentforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-contentforms/pkg/schema"
	"github.com/goliatone/go-contentforms/pkg/uischema"
	"github.com/goliatone/go-contentforms/pkg/widgets"
)

// RenderOptions describes per-request overrides that renderers use to surface
// server-side validation errors and hidden fields.
type RenderOptions = render.RenderOptions

// Payload is the ordered submission payload produced by Form.Submit.
type Payload = form.Payload

// Form is the headless editable tagged-list form.
type Form = form.Form

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// LoadStore returns the embedded form declarations overlaid by the
// declarations found in dir, when dir is not empty. Every schema is decorated
// with the default widget registry, then the presentation overlays (embedded
// ones, replaced per form by overlays in dir), then decorators.
func LoadStore(dir string, decorators ...model.Decorator) (*schema.Store, error) {
	overlays, err := uischema.Default()
	if err != nil {
		return nil, err
	}

	dir = strings.TrimSpace(dir)
	var dirFS fs.FS
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("contentforms: forms dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("contentforms: forms dir %s is not a directory", dir)
		}
		dirFS = os.DirFS(dir)
	}
	dirOverlays, err := uischema.LoadFS(dirFS)
	if err != nil {
		return nil, err
	}

	chain := func(store *uischema.Store) []model.Decorator {
		return append([]model.Decorator{widgets.NewRegistry(), uischema.NewDecorator(store)}, decorators...)
	}

	overrides, err := schema.LoadFS(dirFS, chain(dirOverlays)...)
	if err != nil {
		return nil, err
	}
	// Forms replaced by dir must not receive overlays written for them.
	embedded := overlays.Merge(dirOverlays.Without(overrides.IDs()...))
	store, err := schema.LoadFS(schema.EmbeddedFS(), chain(embedded)...)
	if err != nil {
		return nil, err
	}
	return store.Merge(overrides), nil
}

// NewRegistry returns a renderer registry holding the HTML modal renderer
// (default) and the terminal renderer.
func NewRegistry(vanillaOptions ...vanilla.Option) (*render.Registry, error) {
	html, err := vanilla.New(vanillaOptions...)
	if err != nil {
		return nil, fmt.Errorf("contentforms: vanilla renderer: %w", err)
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	if err := registry.Register(tui.New()); err != nil {
		return nil, err
	}
	return registry, nil
}

// GenerateHTML renders a freshly opened form with the named renderer. It is
// the simplest entry point for callers that just want markup.
func GenerateHTML(ctx context.Context, formID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		FormID:   formID,
		Renderer: rendererName,
	})
}

// WithStore passes a schema store through to the orchestrator.
func WithStore(store *schema.Store) orchestrator.Option {
	return orchestrator.WithStore(store)
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemes registers in-memory theme manifests with the orchestrator.
func WithThemes(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) orchestrator.Option {
	return orchestrator.WithThemes(defaultTheme, defaultVariant, manifests...)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the bundled stylesheet so Go applications can serve it.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(contentforms.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
