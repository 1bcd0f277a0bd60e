package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/render"
	"github.com/goliatone/go-contentforms/pkg/renderers/vanilla"
	"github.com/goliatone/go-contentforms/pkg/schema"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithStore replaces the embedded form declarations.
func WithStore(store *schema.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithFormOptions appends options applied to every form opened through Open.
func WithFormOptions(opts ...form.Option) Option {
	return func(o *Orchestrator) {
		o.formOptions = append(o.formOptions, opts...)
	}
}

// WithThemeSelector resolves theme/variant names into renderer configuration.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemes registers in-memory manifests through a static selector.
func WithThemes(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) Option {
	return func(o *Orchestrator) {
		selector, err := render.NewStaticSelector(defaultTheme, defaultVariant, manifests...)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: themes: %w", err)
			return
		}
		o.themeSelector = selector
	}
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		if len(fallbacks) == 0 {
			return
		}
		o.themeFallbacks = make(map[string]string, len(fallbacks))
		for key, value := range fallbacks {
			o.themeFallbacks[key] = value
		}
	}
}

// Orchestrator opens forms declared in a schema store and renders them. It
// applies sensible defaults (embedded declarations, vanilla renderer) while
// remaining open to dependency injection.
type Orchestrator struct {
	store           *schema.Store
	registry        *render.Registry
	defaultRenderer string
	formOptions     []form.Option
	themeSelector   theme.ThemeSelector
	themeFallbacks  map[string]string
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{defaultRenderer: defaultRendererName}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render.
type Request struct {
	// Form is the live form to render. When nil, FormID is opened fresh.
	Form *form.Form
	// FormID names a declared form; ignored when Form is set.
	FormID string
	// Renderer names the renderer to use. Empty falls back to the default.
	Renderer string
	// RenderOptions carries action URLs, hidden fields and errors.
	RenderOptions render.RenderOptions
	// ThemeName and ThemeVariant are passed to the theme selector.
	ThemeName    string
	ThemeVariant string
}

// Store returns the schema store forms are opened from.
func (o *Orchestrator) Store() *schema.Store {
	return o.store
}

// Registry returns the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Open creates a form from the declaration named id.
func (o *Orchestrator) Open(id string, opts ...form.Option) (*form.Form, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	declared, ok := o.store.Form(id)
	if !ok {
		return nil, fmt.Errorf("orchestrator: form %q not found", id)
	}
	all := make([]form.Option, 0, len(o.formOptions)+len(opts))
	all = append(all, o.formOptions...)
	all = append(all, opts...)
	f, err := form.New(declared, all...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: open %q: %w", id, err)
	}
	return f, nil
}

// Generate renders the requested form and returns the renderer output.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	f := req.Form
	if f == nil {
		if req.FormID == "" {
			return nil, errors.New("orchestrator: form or form id is required")
		}
		opened, err := o.Open(req.FormID, form.WithOpen(true))
		if err != nil {
			return nil, err
		}
		defer opened.Dispose()
		f = opened
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	if opts.Theme == nil {
		if opts.Theme, err = o.resolveTheme(req.ThemeName, req.ThemeVariant); err != nil {
			return nil, err
		}
	}

	output, err := renderer.Render(ctx, f.Snapshot(), opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

func (o *Orchestrator) resolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return render.ThemeConfig(selection, o.themeFallbacks), nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.store == nil {
		store, err := schema.Default()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: load forms: %w", err)
			return
		}
		o.store = store
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		o.registry.MustRegister(renderer)
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
