// Package components maps widget names to the template partials the vanilla
// renderer uses to draw them.
package components

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-contentforms/pkg/widgets"
)

// Descriptor binds a widget name to its template and asset dependencies.
// List widgets receive {"list": ...} as template data; field widgets receive
// {"field": ...}.
type Descriptor struct {
	Name        string
	Template    string
	List        bool
	Stylesheets []string
}

// Registry tracks descriptors keyed by widget name.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{components: make(map[string]Descriptor)}
}

// NewDefaultRegistry registers the built-in widgets.
func NewDefaultRegistry() *Registry {
	reg := New()
	for _, desc := range []Descriptor{
		{Name: widgets.WidgetInput, Template: "templates/components/input.tmpl"},
		{Name: widgets.WidgetTextarea, Template: "templates/components/textarea.tmpl"},
		{Name: widgets.WidgetSelect, Template: "templates/components/select.tmpl"},
		{Name: widgets.WidgetChips, Template: "templates/components/chips.tmpl", List: true},
		{Name: widgets.WidgetRepeater, Template: "templates/components/repeater.tmpl", List: true},
	} {
		reg.MustRegister(desc)
	}
	return reg
}

// Register adds or replaces a descriptor.
func (r *Registry) Register(desc Descriptor) error {
	desc.Name = strings.TrimSpace(desc.Name)
	if desc.Name == "" {
		return fmt.Errorf("components: descriptor name is required")
	}
	if strings.TrimSpace(desc.Template) == "" {
		return fmt.Errorf("components: descriptor %q requires a template", desc.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[desc.Name] = desc
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(desc Descriptor) {
	if err := r.Register(desc); err != nil {
		panic(err)
	}
}

// Descriptor returns the descriptor registered under name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.components[name]
	return desc, ok
}

// Names lists registered widget names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Clone returns an independent copy for per-renderer overrides.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := New()
	for name, desc := range r.components {
		desc.Stylesheets = slices.Clone(desc.Stylesheets)
		out.components[name] = desc
	}
	return out
}

// Stylesheets returns the de-duplicated stylesheets of the named widgets in
// the order given.
func (r *Registry) Stylesheets(names []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	seen := map[string]struct{}{}
	for _, name := range names {
		for _, href := range r.components[name].Stylesheets {
			if _, dup := seen[href]; dup {
				continue
			}
			seen[href] = struct{}{}
			out = append(out, href)
		}
	}
	return out
}
