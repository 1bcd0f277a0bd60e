package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages. Field keys are record field names, list names, or "list.field"
// for item sub-fields.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping blanks and duplicates while keeping order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapValidationError maps a *form.ValidationError onto the schema.
func MapValidationError(schema model.FormSchema, err *form.ValidationError) ErrorMapping {
	return MapErrorPayload(schema, err.Fields())
}

// MapErrorPayload normalises error paths (dotted, JSON pointer, bracketed or
// wrapped in "body"/"payload") onto the schema's field paths. Item indices are
// dropped so "examples.0.title" lands on "examples.title". Unknown paths
// become form-level messages so nothing is lost.
func MapErrorPayload(schema model.FormSchema, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := fieldPaths(schema)
	for raw, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		path := matchPath(raw, known)
		if path == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[path] = append(mapping.Fields[path], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func fieldPaths(schema model.FormSchema) map[string]struct{} {
	paths := make(map[string]struct{}, len(schema.Fields)+len(schema.Lists)*3)
	for _, field := range schema.Fields {
		paths[field.Name] = struct{}{}
	}
	for _, list := range schema.Lists {
		paths[list.Name] = struct{}{}
		for _, field := range list.Fields {
			paths[list.Name+"."+field.Name] = struct{}{}
		}
	}
	return paths
}

func matchPath(raw string, known map[string]struct{}) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors":
		return ""
	}

	segments := splitPath(raw)
	for len(segments) > 0 {
		switch strings.ToLower(segments[0]) {
		case "body", "request", "payload", "data":
			segments = segments[1:]
			continue
		}
		break
	}

	kept := segments[:0:0]
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		kept = append(kept, segment)
	}
	for end := len(kept); end > 0; end-- {
		candidate := strings.Join(kept[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func splitPath(path string) []string {
	clean := strings.NewReplacer("[", ".", "]", "").Replace(strings.TrimSpace(path))
	clean = strings.TrimLeft(clean, "#$/.")
	parts := strings.FieldsFunc(clean, func(r rune) bool { return r == '.' || r == '/' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		out = append(out, part)
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
