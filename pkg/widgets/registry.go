package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-contentforms/pkg/model"
)

// Built-in widget identifiers.
const (
	WidgetInput    = "input"
	WidgetTextarea = "textarea"
	WidgetSelect   = "select"
	WidgetChips    = "chips"
	WidgetRepeater = "repeater"
)

// HintKey is the UIHints/Metadata key carrying the chosen widget.
const HintKey = "widget"

// Matcher decides whether a widget handles the supplied field.
type Matcher func(field model.Field) bool

// ListMatcher decides whether a widget handles the supplied list.
type ListMatcher func(list model.List) bool

type rule[M any] struct {
	name     string
	priority int
	match    M
	order    int
}

// Registry picks widgets for record fields and lists from explicit hints or
// registered matchers. Higher priority wins; ties fall back to registration
// order.
type Registry struct {
	mu         sync.RWMutex
	fieldRules []rule[Matcher]
	listRules  []rule[ListMatcher]
}

// NewRegistry constructs a registry with the built-in matchers.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a field widget matcher.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	name = strings.TrimSpace(name)
	if r == nil || matcher == nil || name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fieldRules = append(r.fieldRules, rule[Matcher]{name: name, priority: priority, match: matcher, order: len(r.fieldRules)})
}

// RegisterList adds a list widget matcher.
func (r *Registry) RegisterList(name string, priority int, matcher ListMatcher) {
	name = strings.TrimSpace(name)
	if r == nil || matcher == nil || name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listRules = append(r.listRules, rule[ListMatcher]{name: name, priority: priority, match: matcher, order: len(r.listRules)})
}

// Resolve returns the widget for a field. Explicit hints win over matchers.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := explicitWidget(field.Metadata, field.UIHints); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	rules := sortedRules(r.fieldRules)
	r.mu.RUnlock()
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// ResolveList returns the widget for a list.
func (r *Registry) ResolveList(list model.List) (string, bool) {
	if explicit := explicitWidget(list.Metadata, list.UIHints); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	rules := sortedRules(r.listRules)
	r.mu.RUnlock()
	for _, entry := range rules {
		if entry.match(list) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate implements model.Decorator: every field, list and list sub-field
// gets UIHints["widget"] unless one is already set.
func (r *Registry) Decorate(form *model.FormSchema) error {
	if r == nil || form == nil {
		return nil
	}
	for i := range form.Fields {
		r.decorateField(&form.Fields[i])
	}
	for i := range form.Lists {
		list := &form.Lists[i]
		if widget, ok := r.ResolveList(*list); ok {
			list.UIHints = withHint(list.UIHints, widget)
		}
		for j := range list.Fields {
			r.decorateField(&list.Fields[j])
		}
	}
	return nil
}

func (r *Registry) decorateField(field *model.Field) {
	if widget, ok := r.Resolve(*field); ok {
		field.UIHints = withHint(field.UIHints, widget)
	}
}

func withHint(hints map[string]string, widget string) map[string]string {
	if hints == nil {
		hints = make(map[string]string, 1)
	}
	if hints[HintKey] == "" {
		hints[HintKey] = widget
	}
	return hints
}

func sortedRules[M any](rules []rule[M]) []rule[M] {
	out := append([]rule[M](nil), rules...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].priority == out[j].priority {
			return out[i].order < out[j].order
		}
		return out[i].priority > out[j].priority
	})
	return out
}

func explicitWidget(metadata, hints map[string]string) string {
	if widget := strings.TrimSpace(metadata[HintKey]); widget != "" {
		return widget
	}
	return strings.TrimSpace(hints[HintKey])
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetSelect, 70, func(field model.Field) bool {
		return len(field.Enum) > 0
	})
	r.Register(WidgetTextarea, 60, func(field model.Field) bool {
		return field.Type == model.FieldTypeText
	})
	r.Register(WidgetInput, 0, func(model.Field) bool {
		return true
	})

	r.RegisterList(WidgetChips, 50, func(list model.List) bool {
		return list.Shape == model.ItemShapeScalar && list.Flatten == model.FlattenValue
	})
	r.RegisterList(WidgetRepeater, 0, func(model.List) bool {
		return true
	})
}
