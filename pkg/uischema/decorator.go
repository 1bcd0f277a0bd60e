package uischema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-contentforms/pkg/model"
)

// Decorator applies overlays from a store to form schemas.
type Decorator struct {
	store *Store
}

var _ model.Decorator = (*Decorator)(nil)

// NewDecorator returns a decorator backed by store. A nil or empty store makes
// Decorate a no-op.
func NewDecorator(store *Store) *Decorator {
	return &Decorator{store: store}
}

// Decorate applies the overlay registered for form.ID. Overlay entries naming
// fields or lists the form does not declare are reported as errors so typos
// surface at load time.
func (d *Decorator) Decorate(form *model.FormSchema) error {
	if d == nil || form == nil {
		return nil
	}
	overlay, ok := d.store.Form(form.ID)
	if !ok {
		return nil
	}

	setString(&form.Title, overlay.Title)
	setString(&form.Description, overlay.Description)
	setString(&form.SubmitLabel, overlay.SubmitLabel)

	for _, name := range sortedKeys(overlay.Fields) {
		idx := fieldIndex(form.Fields, name)
		if idx < 0 {
			return fmt.Errorf("uischema: form %q (file %s): unknown field %q", form.ID, overlay.Source, name)
		}
		applyField(&form.Fields[idx], overlay.Fields[name])
	}

	for _, name := range sortedKeys(overlay.Lists) {
		idx := -1
		for i := range form.Lists {
			if form.Lists[i].Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("uischema: form %q (file %s): unknown list %q", form.ID, overlay.Source, name)
		}
		list := &form.Lists[idx]
		cfg := overlay.Lists[name]
		setString(&list.Label, cfg.Label)
		setString(&list.Description, cfg.Description)
		setString(&list.AddLabel, cfg.AddLabel)
		list.UIHints = mergeHints(list.UIHints, cfg.UIHints)
		if widget := strings.TrimSpace(cfg.Widget); widget != "" {
			list.UIHints = setHint(list.UIHints, HintWidget, widget)
		}
		for _, sub := range sortedKeys(cfg.Fields) {
			subIdx := fieldIndex(list.Fields, sub)
			if subIdx < 0 {
				return fmt.Errorf("uischema: form %q (file %s): unknown field %q in list %q", form.ID, overlay.Source, sub, name)
			}
			applyField(&list.Fields[subIdx], cfg.Fields[sub])
		}
	}
	return nil
}

func applyField(field *model.Field, cfg FieldConfig) {
	setString(&field.Label, cfg.Label)
	setString(&field.Placeholder, cfg.Placeholder)
	setString(&field.Description, cfg.Description)
	field.UIHints = mergeHints(field.UIHints, cfg.UIHints)
	if widget := strings.TrimSpace(cfg.Widget); widget != "" {
		field.UIHints = setHint(field.UIHints, HintWidget, widget)
	}
	if cfg.Rows > 0 {
		field.UIHints = setHint(field.UIHints, HintRows, strconv.Itoa(cfg.Rows))
	}
	if icon := sanitizeIconMarkup(cfg.Icon); icon != "" {
		field.UIHints = setHint(field.UIHints, HintIcon, icon)
	}
}

func fieldIndex(fields []model.Field, name string) int {
	for i := range fields {
		if fields[i].Name == name {
			return i
		}
	}
	return -1
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func setHint(hints map[string]string, key, value string) map[string]string {
	if hints == nil {
		hints = make(map[string]string, 1)
	}
	hints[key] = value
	return hints
}

// mergeHints copies extra hints over hints. The icon hint is never taken from
// free-form hints; it must go through the sanitised Icon field.
func mergeHints(hints, extra map[string]string) map[string]string {
	for key, value := range extra {
		if key == HintIcon {
			continue
		}
		hints = setHint(hints, key, value)
	}
	return hints
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
