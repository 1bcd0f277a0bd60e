package formapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/quickfill"
	"github.com/goliatone/go-contentforms/pkg/render"
	"github.com/goliatone/go-contentforms/pkg/schema"
)

const (
	defaultRoutePath   = "/api/contentforms"
	defaultMaxSessions = 1024
	defaultWaitTimeout = 30 * time.Second
	defaultCSRFField   = "_csrf"
)

// GuardFunc authorises a request before it reaches a route.
type GuardFunc func(r *http.Request) error

// CSRFFunc returns the token embedded in rendered forms. An empty token omits
// the hidden field.
type CSRFFunc func(r *http.Request) string

// SubmitFunc receives every accepted submission.
type SubmitFunc func(formID, sessionID string, payload form.Payload)

type Options struct {
	RoutePath   string
	Store       *schema.Store
	Generator   quickfill.Generator
	Validator   form.Validator
	Renderer    render.Renderer
	Themes      theme.ThemeSelector
	Theme       string
	Variant     string
	CSRF        CSRFFunc
	CSRFField   string
	Guard       GuardFunc
	OnSubmit    SubmitFunc
	Logger      *slog.Logger
	MaxSessions int
	WaitTimeout time.Duration
	NewID       func() string
	FormOptions []form.Option
	Title       string
	Version     string
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:   defaultRoutePath,
		CSRFField:   defaultCSRFField,
		MaxSessions: defaultMaxSessions,
		WaitTimeout: defaultWaitTimeout,
		NewID:       uuid.NewString,
		Title:       "Content Forms API",
		Version:     "dev",
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = defaultRoutePath
	}
	if opts.CSRFField == "" {
		opts.CSRFField = defaultCSRFField
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = defaultWaitTimeout
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.FormOptions != nil {
		opts.FormOptions = append([]form.Option{}, opts.FormOptions...)
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

// WithStore serves the forms of store instead of the embedded declarations.
func WithStore(store *schema.Store) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Store = store
	}
}

func WithGenerator(generator quickfill.Generator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Generator = generator
	}
}

// WithValidator replaces the default schema validator run on submit.
func WithValidator(validator form.Validator) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Validator = validator
	}
}

// WithRenderer replaces the HTML renderer (vanilla by default).
func WithRenderer(renderer render.Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = renderer
	}
}

// WithTheme selects the theme applied to rendered forms. Requests may
// override name and variant with the theme and variant query parameters.
func WithTheme(selector theme.ThemeSelector, name, variant string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Themes = selector
		o.Theme = name
		o.Variant = variant
	}
}

func WithCSRF(field string, fn CSRFFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.CSRFField = field
		o.CSRF = fn
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithOnSubmit(fn SubmitFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.OnSubmit = fn
	}
}

func WithLogger(logger *slog.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

// WithMaxSessions caps live sessions; the oldest is disposed when a new one
// would exceed the cap.
func WithMaxSessions(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxSessions = limit
	}
}

// WithWaitTimeout bounds the quick-fill wait route.
func WithWaitTimeout(timeout time.Duration) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.WaitTimeout = timeout
	}
}

func WithIDGenerator(fn func() string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.NewID = fn
	}
}

// WithFormOptions appends options applied to every session form.
func WithFormOptions(opts ...form.Option) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.FormOptions = append(o.FormOptions, opts...)
	}
}

// WithInfo sets the title and version published in openapi.json.
func WithInfo(title, version string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		if title != "" {
			o.Title = title
		}
		if version != "" {
			o.Version = version
		}
	}
}
