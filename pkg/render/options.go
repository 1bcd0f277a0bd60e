package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request data that renderers use to customise their
// output without mutating the form.
type RenderOptions struct {
	// Action is the URL the rendered form posts to. Buttons append their
	// intent as a form value so one endpoint can drive the whole modal.
	Action string
	// Errors surfaces validation feedback keyed by dotted field path, as
	// produced by MapErrorPayload.
	Errors map[string][]string
	// FormErrors are messages that do not belong to a single field, such as a
	// failed quick-fill.
	FormErrors []string
	// Hidden fields are emitted verbatim (CSRF tokens, session hints).
	Hidden map[string]string
	// Theme supplies tokens, CSS variables and asset URLs. Nil renders the
	// unthemed defaults.
	Theme *theme.RendererConfig
	// Fragment renders only the dialog, without the surrounding document.
	Fragment bool
}

// WithValidation returns a copy of o with the mapped errors applied.
func (o RenderOptions) WithValidation(mapping ErrorMapping) RenderOptions {
	o.Errors = mapping.Fields
	o.FormErrors = MergeFormErrors(o.FormErrors, mapping.Form...)
	return o
}
