package model

import (
	"fmt"
	"strings"
	"time"
)

// FieldType is the simplified enum for record field kinds. Every value in a
// record is a string; the type only drives the input widget.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeText   FieldType = "text"
)

// ItemShape distinguishes single-value list items from multi-field ones.
type ItemShape string

const (
	ItemShapeScalar    ItemShape = "scalar"
	ItemShapeComposite ItemShape = "composite"
)

// Flatten controls how list items appear in the submission payload.
type Flatten string

const (
	// FlattenObject emits each item as an ordered object ({"text": "..."} for
	// scalar lists, {"title": "...", "content": "..."} for composite ones).
	FlattenObject Flatten = "object"
	// FlattenValue emits scalar items as plain strings.
	FlattenValue Flatten = "value"
)

// ScalarItemField is the sub-field name used by scalar list items.
const ScalarItemField = "text"

// DefaultQuickFillDelay mirrors the simulated latency of the reference mock.
const DefaultQuickFillDelay = 2500 * time.Millisecond

// Field models a single record input. Struct fields are annotated so
// renderers and HTTP handlers can serialise them directly.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     string            `json:"default,omitempty"`
	Enum        []string          `json:"enum,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
}

// List describes an editable, ordered collection attached to a form. Fields
// lists the item sub-fields; scalar lists carry exactly one sub-field named
// ScalarItemField.
type List struct {
	Name        string            `json:"name"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Shape       ItemShape         `json:"shape"`
	Flatten     Flatten           `json:"flatten"`
	AddLabel    string            `json:"addLabel,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
}

// Field returns the sub-field with the given name.
func (l List) Field(name string) (Field, bool) {
	for _, field := range l.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Dataset is a complete replacement for a form's record and lists, used by
// quick-fill. List items are keyed by sub-field name.
type Dataset struct {
	Record map[string]string              `json:"record,omitempty"`
	Lists  map[string][]map[string]string `json:"lists,omitempty"`
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	out := Dataset{}
	if d.Record != nil {
		out.Record = make(map[string]string, len(d.Record))
		for key, value := range d.Record {
			out.Record[key] = value
		}
	}
	if d.Lists != nil {
		out.Lists = make(map[string][]map[string]string, len(d.Lists))
		for name, items := range d.Lists {
			cloned := make([]map[string]string, len(items))
			for i, item := range items {
				entry := make(map[string]string, len(item))
				for key, value := range item {
					entry[key] = value
				}
				cloned[i] = entry
			}
			out.Lists[name] = cloned
		}
	}
	return out
}

// QuickFill configures the AI quick-fill action of a form.
type QuickFill struct {
	Enabled            bool          `json:"enabled"`
	Label              string        `json:"label,omitempty"`
	SubjectLabel       string        `json:"subjectLabel,omitempty"`
	SubjectPlaceholder string        `json:"subjectPlaceholder,omitempty"`
	Delay              time.Duration `json:"delay,omitempty"`
	Dataset            Dataset       `json:"dataset"`
}

// FormSchema is the top-level description of a form that the engine and the
// renderers consume.
type FormSchema struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	SubmitLabel string            `json:"submitLabel,omitempty"`
	Fields      []Field           `json:"fields"`
	Lists       []List            `json:"lists,omitempty"`
	QuickFill   QuickFill         `json:"quickFill"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Field returns the record field with the given name.
func (s FormSchema) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// List returns the list with the given name.
func (s FormSchema) List(name string) (List, bool) {
	for _, list := range s.Lists {
		if list.Name == name {
			return list, true
		}
	}
	return List{}, false
}

// Validate checks structural invariants: non-empty unique names, a known item
// shape per list, scalar lists with exactly one "text" sub-field, and a
// value flatten mode only on scalar lists.
func (s FormSchema) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("model: form id is required")
	}
	seen := make(map[string]struct{}, len(s.Fields)+len(s.Lists))
	for _, field := range s.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("model: form %q has a field without a name", s.ID)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("model: form %q declares %q twice", s.ID, name)
		}
		seen[name] = struct{}{}
	}
	for _, list := range s.Lists {
		name := strings.TrimSpace(list.Name)
		if name == "" {
			return fmt.Errorf("model: form %q has a list without a name", s.ID)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("model: form %q declares %q twice", s.ID, name)
		}
		seen[name] = struct{}{}
		if len(list.Fields) == 0 {
			return fmt.Errorf("model: list %q in form %q has no item fields", name, s.ID)
		}
		switch list.Shape {
		case ItemShapeScalar:
			if len(list.Fields) != 1 || list.Fields[0].Name != ScalarItemField {
				return fmt.Errorf("model: scalar list %q in form %q must have a single %q field", name, s.ID, ScalarItemField)
			}
		case ItemShapeComposite:
			if list.Flatten == FlattenValue {
				return fmt.Errorf("model: composite list %q in form %q cannot flatten to values", name, s.ID)
			}
		default:
			return fmt.Errorf("model: list %q in form %q has unknown shape %q", name, s.ID, list.Shape)
		}
		switch list.Flatten {
		case FlattenObject, FlattenValue:
		default:
			return fmt.Errorf("model: list %q in form %q has unknown flatten mode %q", name, s.ID, list.Flatten)
		}
	}
	return nil
}
