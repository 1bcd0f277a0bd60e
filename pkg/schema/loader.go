package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-contentforms/pkg/model"
)

// Store holds loaded form schemas keyed by id.
type Store struct {
	forms map[string]model.FormSchema
}

// LoadFS walks fsys and parses every JSON/YAML declaration it finds. Each
// schema is labelled with model.LabelDecorator, then passed through the
// optional decorators and validated. A nil fsys yields an empty store.
func LoadFS(fsys fs.FS, decorators ...model.Decorator) (*Store, error) {
	store := &Store{forms: make(map[string]model.FormSchema)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawID, raw := range doc.Forms {
			id := strings.TrimSpace(rawID)
			if id == "" {
				return fmt.Errorf("schema: file %s defines an empty form id", path)
			}
			if _, exists := store.forms[id]; exists {
				return fmt.Errorf("schema: duplicate form %q (file %s)", id, path)
			}
			form, err := normaliseForm(raw, id, path)
			if err != nil {
				return err
			}
			if err := decorate(&form, decorators); err != nil {
				return fmt.Errorf("schema: decorate %q (file %s): %w", id, path, err)
			}
			if err := form.Validate(); err != nil {
				return fmt.Errorf("schema: %s: %w", path, err)
			}
			store.forms[id] = form
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Form returns a copy of the schema registered under id.
func (s *Store) Form(id string) (model.FormSchema, bool) {
	if s == nil {
		return model.FormSchema{}, false
	}
	form, ok := s.forms[strings.TrimSpace(id)]
	if !ok {
		return model.FormSchema{}, false
	}
	return cloneForm(form), true
}

// IDs returns the registered form ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

// Merge returns a new store holding the forms of s overlaid by the forms of
// other; forms in other replace same-id forms in s.
func (s *Store) Merge(other *Store) *Store {
	out := &Store{forms: make(map[string]model.FormSchema)}
	for _, src := range []*Store{s, other} {
		if src == nil {
			continue
		}
		for id, form := range src.forms {
			out.forms[id] = form
		}
	}
	return out
}

type documentFile struct {
	Forms map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description" yaml:"description"`
	SubmitLabel string            `json:"submit_label" yaml:"submit_label"`
	Fields      []fieldFile       `json:"fields" yaml:"fields"`
	Lists       []listFile        `json:"lists" yaml:"lists"`
	QuickFill   *quickFillFile    `json:"quick_fill" yaml:"quick_fill"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
}

type fieldFile struct {
	Name        string            `json:"name" yaml:"name"`
	Type        string            `json:"type" yaml:"type"`
	Required    *bool             `json:"required" yaml:"required"`
	Label       string            `json:"label" yaml:"label"`
	Placeholder string            `json:"placeholder" yaml:"placeholder"`
	Description string            `json:"description" yaml:"description"`
	Default     string            `json:"default" yaml:"default"`
	Enum        []string          `json:"enum" yaml:"enum"`
	Widget      string            `json:"widget" yaml:"widget"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
}

type listFile struct {
	Name        string            `json:"name" yaml:"name"`
	Label       string            `json:"label" yaml:"label"`
	Description string            `json:"description" yaml:"description"`
	Shape       string            `json:"shape" yaml:"shape"`
	Flatten     string            `json:"flatten" yaml:"flatten"`
	AddLabel    string            `json:"add_label" yaml:"add_label"`
	Fields      []fieldFile       `json:"fields" yaml:"fields"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
}

type quickFillFile struct {
	Disabled           bool        `json:"disabled" yaml:"disabled"`
	Label              string      `json:"label" yaml:"label"`
	SubjectLabel       string      `json:"subject_label" yaml:"subject_label"`
	SubjectPlaceholder string      `json:"subject_placeholder" yaml:"subject_placeholder"`
	Delay              string      `json:"delay" yaml:"delay"`
	Dataset            datasetFile `json:"dataset" yaml:"dataset"`
}

type datasetFile struct {
	Record map[string]string              `json:"record" yaml:"record"`
	Lists  map[string][]map[string]string `json:"lists" yaml:"lists"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("schema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML", source)
}

func normaliseForm(raw formFile, id, source string) (model.FormSchema, error) {
	form := model.FormSchema{
		ID:          id,
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		SubmitLabel: strings.TrimSpace(raw.SubmitLabel),
		Metadata:    cloneStrings(raw.Metadata),
	}

	for _, rawField := range raw.Fields {
		field, err := normaliseField(rawField, false)
		if err != nil {
			return model.FormSchema{}, fmt.Errorf("schema: form %q (file %s): %w", id, source, err)
		}
		form.Fields = append(form.Fields, field)
	}

	for _, rawList := range raw.Lists {
		list, err := normaliseList(rawList)
		if err != nil {
			return model.FormSchema{}, fmt.Errorf("schema: form %q (file %s): %w", id, source, err)
		}
		form.Lists = append(form.Lists, list)
	}

	if raw.QuickFill != nil && !raw.QuickFill.Disabled {
		qf, err := normaliseQuickFill(*raw.QuickFill)
		if err != nil {
			return model.FormSchema{}, fmt.Errorf("schema: form %q (file %s): %w", id, source, err)
		}
		form.QuickFill = qf
	}

	return form, nil
}

// normaliseField applies defaults. Record fields are optional unless marked
// required; list item fields are required unless marked otherwise.
func normaliseField(raw fieldFile, itemField bool) (model.Field, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return model.Field{}, fmt.Errorf("field without a name")
	}

	field := model.Field{
		Name:        name,
		Type:        model.FieldTypeString,
		Required:    itemField,
		Label:       strings.TrimSpace(raw.Label),
		Placeholder: strings.TrimSpace(raw.Placeholder),
		Description: strings.TrimSpace(raw.Description),
		Default:     raw.Default,
		Metadata:    cloneStrings(raw.Metadata),
	}
	if raw.Required != nil {
		field.Required = *raw.Required
	}
	switch strings.ToLower(strings.TrimSpace(raw.Type)) {
	case "", string(model.FieldTypeString):
	case string(model.FieldTypeText), "textarea":
		field.Type = model.FieldTypeText
	default:
		return model.Field{}, fmt.Errorf("field %q has unknown type %q", name, raw.Type)
	}
	for _, option := range raw.Enum {
		if trimmed := strings.TrimSpace(option); trimmed != "" {
			field.Enum = append(field.Enum, trimmed)
		}
	}
	if widget := strings.TrimSpace(raw.Widget); widget != "" {
		field.UIHints = map[string]string{"widget": widget}
	}
	return field, nil
}

func normaliseList(raw listFile) (model.List, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return model.List{}, fmt.Errorf("list without a name")
	}

	list := model.List{
		Name:        name,
		Label:       strings.TrimSpace(raw.Label),
		Description: strings.TrimSpace(raw.Description),
		Shape:       model.ItemShape(strings.ToLower(strings.TrimSpace(raw.Shape))),
		Flatten:     model.Flatten(strings.ToLower(strings.TrimSpace(raw.Flatten))),
		AddLabel:    strings.TrimSpace(raw.AddLabel),
		Metadata:    cloneStrings(raw.Metadata),
	}
	if list.Shape == "" {
		list.Shape = model.ItemShapeScalar
		if len(raw.Fields) > 1 {
			list.Shape = model.ItemShapeComposite
		}
	}
	if list.Flatten == "" {
		list.Flatten = model.FlattenObject
	}

	for _, rawField := range raw.Fields {
		field, err := normaliseField(rawField, true)
		if err != nil {
			return model.List{}, fmt.Errorf("list %q: %w", name, err)
		}
		list.Fields = append(list.Fields, field)
	}
	if list.Shape == model.ItemShapeScalar && len(list.Fields) == 0 {
		list.Fields = []model.Field{{
			Name:     model.ScalarItemField,
			Type:     model.FieldTypeString,
			Required: true,
		}}
	}
	return list, nil
}

func normaliseQuickFill(raw quickFillFile) (model.QuickFill, error) {
	qf := model.QuickFill{
		Enabled:            true,
		Label:              strings.TrimSpace(raw.Label),
		SubjectLabel:       strings.TrimSpace(raw.SubjectLabel),
		SubjectPlaceholder: strings.TrimSpace(raw.SubjectPlaceholder),
		Delay:              model.DefaultQuickFillDelay,
		Dataset: model.Dataset{
			Record: cloneStrings(raw.Dataset.Record),
			Lists:  raw.Dataset.Lists,
		}.Clone(),
	}
	if delay := strings.TrimSpace(raw.Delay); delay != "" {
		parsed, err := time.ParseDuration(delay)
		if err != nil {
			return model.QuickFill{}, fmt.Errorf("quick_fill delay %q: %w", delay, err)
		}
		if parsed < 0 {
			return model.QuickFill{}, fmt.Errorf("quick_fill delay %q is negative", delay)
		}
		qf.Delay = parsed
	}
	return qf, nil
}

func decorate(form *model.FormSchema, decorators []model.Decorator) error {
	all := append([]model.Decorator{model.LabelDecorator(nil)}, decorators...)
	for _, decorator := range all {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return err
		}
	}
	return nil
}

func cloneForm(form model.FormSchema) model.FormSchema {
	out := form
	out.Metadata = cloneStrings(form.Metadata)
	out.Fields = cloneFields(form.Fields)
	if form.Lists != nil {
		out.Lists = make([]model.List, len(form.Lists))
		for i, list := range form.Lists {
			list.Fields = cloneFields(list.Fields)
			list.Metadata = cloneStrings(list.Metadata)
			list.UIHints = cloneStrings(list.UIHints)
			out.Lists[i] = list
		}
	}
	out.QuickFill.Dataset = form.QuickFill.Dataset.Clone()
	return out
}

func cloneFields(fields []model.Field) []model.Field {
	if fields == nil {
		return nil
	}
	out := make([]model.Field, len(fields))
	for i, field := range fields {
		field.Enum = append([]string(nil), field.Enum...)
		field.Metadata = cloneStrings(field.Metadata)
		field.UIHints = cloneStrings(field.UIHints)
		out[i] = field
	}
	return out
}

func cloneStrings(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
