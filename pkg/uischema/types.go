package uischema

// Store keeps the parsed overlays keyed by form id. It is safe for concurrent
// readers when treated as immutable after construction.
type Store struct {
	forms map[string]FormOverlay
}

// FormOverlay describes the presentation overrides for one form.
type FormOverlay struct {
	ID          string                 `json:"-" yaml:"-"`
	Source      string                 `json:"-" yaml:"-"`
	Title       string                 `json:"title" yaml:"title"`
	Description string                 `json:"description" yaml:"description"`
	SubmitLabel string                 `json:"submit_label" yaml:"submit_label"`
	Fields      map[string]FieldConfig `json:"fields" yaml:"fields"`
	Lists       map[string]ListConfig  `json:"lists" yaml:"lists"`
}

// FieldConfig customises how a record field or list sub-field is rendered.
type FieldConfig struct {
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Widget      string            `json:"widget,omitempty" yaml:"widget,omitempty"`
	Rows        int               `json:"rows,omitempty" yaml:"rows,omitempty"`
	Icon        string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	UIHints     map[string]string `json:"ui_hints,omitempty" yaml:"ui_hints,omitempty"`
}

// ListConfig customises an editable list and its item sub-fields.
type ListConfig struct {
	Label       string                 `json:"label,omitempty" yaml:"label,omitempty"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	AddLabel    string                 `json:"add_label,omitempty" yaml:"add_label,omitempty"`
	Widget      string                 `json:"widget,omitempty" yaml:"widget,omitempty"`
	UIHints     map[string]string      `json:"ui_hints,omitempty" yaml:"ui_hints,omitempty"`
	Fields      map[string]FieldConfig `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Hint keys written by the decorator.
const (
	HintWidget = "widget"
	HintRows   = "rows"
	HintIcon   = "icon"
)
