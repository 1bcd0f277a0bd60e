package form

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClosed is returned by mutating operations while the form is hidden.
	ErrClosed = errors.New("form: closed")
	// ErrDisposed is returned once Dispose has torn the form down.
	ErrDisposed = errors.New("form: disposed")
	// ErrUnknownField signals a record or item field the schema does not declare.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrUnknownList signals a list the schema does not declare.
	ErrUnknownList = errors.New("form: unknown list")
	// ErrSubmitting is returned by Submit while another submission of the
	// same form is still running.
	ErrSubmitting = errors.New("form: submission in progress")
	// ErrGenerating is returned while a quick-fill is pending; the subject
	// input and the trigger are disabled in that state.
	ErrGenerating = errors.New("form: quick-fill in progress")
	// ErrQuickFillDisabled is returned when the schema has no quick-fill.
	ErrQuickFillDisabled = errors.New("form: quick-fill disabled")
	// ErrNotFailed is returned by Retry when there is nothing to retry.
	ErrNotFailed = errors.New("form: no failed quick-fill to retry")
	// ErrEditedDuringGeneration marks a completion discarded by the edit guard.
	ErrEditedDuringGeneration = errors.New("form: edited while generating")
)

// FieldIssue describes a problem with a single field, keyed by its dotted
// path (for example "name" or "examples.0.title").
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned by Submit when required fields are blank or the
// configured validator rejects the payload.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "form: validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return "form: validation failed: " + strings.Join(parts, "; ")
}

// Fields groups issue messages by field path, the shape renderers consume.
func (e *ValidationError) Fields() map[string][]string {
	if e == nil || len(e.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(e.Issues))
	for _, issue := range e.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

// GenerationError records a failed quick-fill. It is exposed through
// Snapshot.FillErr while the form sits in FillFailed.
type GenerationError struct {
	Subject string
	Err     error
}

func (e *GenerationError) Error() string {
	if e == nil || e.Err == nil {
		return "form: generation failed"
	}
	return fmt.Sprintf("form: generation failed for %q: %v", e.Subject, e.Err)
}

func (e *GenerationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
