package validation

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
)

// Validator checks payloads against schemas derived with PayloadSchema. Derived
// schemas are cached by declaration content, so two declarations sharing an ID
// never see each other's rules. It satisfies form.Validator.
type Validator struct {
	mu      sync.Mutex
	schemas map[[sha256.Size]byte]*openapi3.Schema
}

var _ form.Validator = (*Validator)(nil)

// New constructs a Validator.
func New() *Validator {
	return &Validator{schemas: make(map[[sha256.Size]byte]*openapi3.Schema)}
}

// Validate implements form.Validator.
func (v *Validator) Validate(schema model.FormSchema, payload form.Payload) []form.FieldIssue {
	return v.ValidateMap(schema, payload.Map())
}

// ValidateMap validates an already decoded JSON document, for example a request
// body received over HTTP.
func (v *Validator) ValidateMap(schema model.FormSchema, value map[string]any) []form.FieldIssue {
	err := v.schemaFor(schema).VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}
	return issuesFromError(err)
}

func (v *Validator) schemaFor(schema model.FormSchema) *openapi3.Schema {
	raw, err := json.Marshal(schema)
	if err != nil {
		return PayloadSchema(schema)
	}
	key := sha256.Sum256(raw)

	v.mu.Lock()
	defer v.mu.Unlock()
	if cached, ok := v.schemas[key]; ok {
		return cached
	}
	built := PayloadSchema(schema)
	v.schemas[key] = built
	return built
}

func issuesFromError(err error) []form.FieldIssue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var issues []form.FieldIssue
		for _, inner := range multi {
			issues = append(issues, issuesFromError(inner)...)
		}
		return issues
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []form.FieldIssue{{
			Field:   fieldPath(schemaErr.JSONPointer()),
			Message: strings.TrimSpace(schemaErr.Reason),
		}}
	}
	return []form.FieldIssue{{Message: strings.TrimSpace(err.Error())}}
}

// fieldPath turns a JSON pointer split into segments into the dotted path used
// by renderers ("examples.0.title").
func fieldPath(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if segment == "" {
			continue
		}
		parts = append(parts, segment)
	}
	return strings.Join(parts, ".")
}
