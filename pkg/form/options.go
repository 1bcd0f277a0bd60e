package form

import (
	"log/slog"

	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/quickfill"
)

// Validator adds payload checks on top of the built-in required-field check.
// Issues it returns make Submit fail with a *ValidationError.
type Validator interface {
	Validate(schema model.FormSchema, payload Payload) []FieldIssue
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(schema model.FormSchema, payload Payload) []FieldIssue

// Validate implements Validator.
func (fn ValidatorFunc) Validate(schema model.FormSchema, payload Payload) []FieldIssue {
	return fn(schema, payload)
}

// Option customises a Form.
type Option func(*config)

type config struct {
	onSubmit     func(Payload)
	onOpenChange func(bool)
	onFillChange func(FillState, error)
	generator    quickfill.Generator
	validator    Validator
	logger       *slog.Logger
	open         bool
	resetOnOpen  bool
	editGuard    bool
}

func defaultConfig() config {
	return config{
		generator: quickfill.NewMock(),
		logger:    slog.New(slog.DiscardHandler),
		open:      true,
	}
}

// WithOnSubmit registers the callback that receives each successful payload.
func WithOnSubmit(fn func(Payload)) Option {
	return func(c *config) {
		c.onSubmit = fn
	}
}

// WithOnOpenChange registers the close request handler. Submit and Cancel
// call it with false; the host decides whether to hide the form. Without a
// handler the form closes itself.
func WithOnOpenChange(fn func(bool)) Option {
	return func(c *config) {
		c.onOpenChange = fn
	}
}

// WithOnFillChange observes quick-fill state transitions.
func WithOnFillChange(fn func(FillState, error)) Option {
	return func(c *config) {
		c.onFillChange = fn
	}
}

// WithGenerator swaps the quick-fill backend. The default is the canned mock.
func WithGenerator(generator quickfill.Generator) Option {
	return func(c *config) {
		if generator != nil {
			c.generator = generator
		}
	}
}

// WithValidator installs an extra payload validator.
func WithValidator(validator Validator) Option {
	return func(c *config) {
		c.validator = validator
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOpen sets the initial visibility. Forms start open.
func WithOpen(open bool) Option {
	return func(c *config) {
		c.open = open
	}
}

// WithResetOnOpen clears all form state, including a pending quick-fill,
// whenever the form transitions from closed to open.
func WithResetOnOpen(reset bool) Option {
	return func(c *config) {
		c.resetOnOpen = reset
	}
}

// WithEditGuard discards a quick-fill completion when the record or a list
// was edited while it was generating; the form lands in FillFailed with
// ErrEditedDuringGeneration instead of overwriting the edits.
func WithEditGuard(enabled bool) Option {
	return func(c *config) {
		c.editGuard = enabled
	}
}
