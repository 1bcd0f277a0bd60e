// Package vanilla renders a form snapshot as a server-driven HTML <dialog>.
// Every control posts back to RenderOptions.Action with an "intent" value
// (submit, cancel, quickfill, retry, add:<list>, remove:<list>:<index>), so
// the modal works without client-side state. The only script moves Enter on
// scalar list inputs to the list's add button.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/render"
	rendertemplate "github.com/goliatone/go-contentforms/pkg/render/template"
	"github.com/goliatone/go-contentforms/pkg/render/template/gotemplate"
	"github.com/goliatone/go-contentforms/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-contentforms/pkg/widgets"
)

// Template engines selectable with WithTemplateEngine.
const (
	EnginePongo2     = "pongo2"
	EngineGoTemplate = "go-template"
)

// Option customises the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	engine           string
	components       *components.Registry
	widgets          *widgets.Registry
	chrome           map[string]string
	inlineCSS        bool
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithTemplateEngine picks the engine that renders the bundled templates when
// no renderer is injected. Empty keeps the pongo2 default.
func WithTemplateEngine(name string) Option {
	return func(cfg *config) {
		cfg.engine = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithComponents replaces the widget to partial registry.
func WithComponents(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithWidgets replaces the widget resolution registry.
func WithWidgets(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithChromeClasses appends utility classes to chrome slots ("dialog", "form",
// "header", "quickfill", "fields", "actions", "errors").
func WithChromeClasses(classes map[string]string) Option {
	return func(cfg *config) {
		cfg.chrome = classes
	}
}

// WithInlineStylesheet embeds the bundled CSS into full-page renders. It is on
// by default; hosts serving AssetsFS themselves can turn it off.
func WithInlineStylesheet(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineCSS = enabled
	}
}

// Renderer is the HTML modal renderer.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	components *components.Registry
	widgets    *widgets.Registry
	chrome     map[string]string
	inlineCSS  bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{inlineCSS: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := newTemplateEngine(cfg.engine,
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:  templates,
		components: cfg.components,
		widgets:    cfg.widgets,
		chrome:     chromeClasses(cfg.chrome),
		inlineCSS:  cfg.inlineCSS,
	}, nil
}

func newTemplateEngine(name string, opts ...gotemplate.Option) (rendertemplate.TemplateRenderer, error) {
	switch name {
	case "", EnginePongo2:
		return gotemplate.New(opts...)
	case EngineGoTemplate:
		return gotemplate.NewGoTemplate(opts...)
	default:
		return nil, fmt.Errorf("unknown template engine %q", name)
	}
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the modal, wrapped in a minimal HTML document unless
// options.Fragment is set.
func (r *Renderer) Render(ctx context.Context, snapshot form.Snapshot, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	b := &viewBuilder{renderer: r, snapshot: snapshot, options: options}
	data, err := b.modal()
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	modal, err := r.templates.RenderTemplate("templates/modal.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render modal: %w", err)
	}
	if options.Fragment {
		return []byte(modal), nil
	}

	page := map[string]any{
		"title":       snapshot.Schema.Title,
		"modal":       modal,
		"stylesheets": b.stylesheets(),
	}
	if r.inlineCSS {
		page["inline_css"] = defaultStylesheet()
	}
	out, err := r.templates.RenderTemplate("templates/page.tmpl", page)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render page: %w", err)
	}
	return []byte(out), nil
}
