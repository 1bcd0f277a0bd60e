package vanilla

import (
	"errors"
	"fmt"
	"slices"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/render"
	"github.com/goliatone/go-contentforms/pkg/widgets"
)

// Input names used by the rendered controls. The HTTP layer reads the same
// names back.
const (
	StagePrefix = "stage."
	SubjectName = "subject"
	IntentName  = "intent"
)

// StageInputName returns the input name of a list staging field.
func StageInputName(list, field string) string {
	return StagePrefix + list + "." + field
}

type viewBuilder struct {
	renderer *Renderer
	snapshot form.Snapshot
	options  render.RenderOptions
	used     []string
}

func (b *viewBuilder) modal() (map[string]any, error) {
	schema := b.snapshot.Schema

	fields := make([]map[string]any, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		markup, err := b.field(field, field.Name, field.Name, b.snapshot.Record.Get(field.Name), field.Required, "")
		if err != nil {
			return nil, err
		}
		fields = append(fields, map[string]any{"name": field.Name, "markup": markup})
	}

	lists := make([]map[string]any, 0, len(schema.Lists))
	for _, list := range schema.Lists {
		markup, err := b.list(list)
		if err != nil {
			return nil, err
		}
		lists = append(lists, map[string]any{"name": list.Name, "markup": markup})
	}

	hidden := make([]map[string]any, 0, len(b.options.Hidden))
	for _, field := range render.SortedHiddenFields(b.options.Hidden) {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	return map[string]any{
		"dom_id":        controlID(schema.ID, "dialog"),
		"open":          b.snapshot.Open,
		"action":        b.options.Action,
		"classes":       b.renderer.chrome,
		"theme_style":   render.CSSVarsStyle(b.options.Theme),
		"hidden_fields": hidden,
		"form_errors":   b.options.FormErrors,
		"form": map[string]any{
			"id":           schema.ID,
			"title":        schema.Title,
			"description":  schema.Description,
			"submit_label": submitLabel(schema),
		},
		"quick_fill": b.quickFill(),
		"fields":     fields,
		"lists":      lists,
	}, nil
}

func (b *viewBuilder) quickFill() map[string]any {
	qf := b.snapshot.Schema.QuickFill
	view := map[string]any{
		"enabled":             qf.Enabled,
		"label":               qf.Label,
		"subject_label":       qf.SubjectLabel,
		"subject_placeholder": qf.SubjectPlaceholder,
		"subject":             b.snapshot.Subject,
		"state":               b.snapshot.Fill.String(),
		"generating":          b.snapshot.Fill == form.FillGenerating,
		"failed":              b.snapshot.Fill == form.FillFailed,
	}
	if b.snapshot.FillErr != nil {
		view["error"] = fillErrorMessage(b.snapshot.FillErr)
	}
	return view
}

func fillErrorMessage(err error) string {
	if errors.Is(err, form.ErrEditedDuringGeneration) {
		return "The form changed while generating, so the suggestion was discarded."
	}
	return "Generation failed. Try again."
}

// field renders one labelled control through its widget partial.
func (b *viewBuilder) field(field model.Field, path, inputName, value string, required bool, addOnEnter string) (string, error) {
	widget := b.widgetFor(field)
	desc, ok := b.renderer.components.Descriptor(widget)
	if !ok || desc.List {
		return "", fmt.Errorf("component %q not registered for field %q", widget, path)
	}
	b.markUsed(widget)

	options := make([]map[string]any, 0, len(field.Enum))
	for _, option := range field.Enum {
		options = append(options, map[string]any{"value": option, "label": option, "selected": option == value})
	}
	view := map[string]any{
		"id":           controlID(b.snapshot.Schema.ID, path),
		"path":         path,
		"input_name":   inputName,
		"label":        field.Label,
		"placeholder":  field.Placeholder,
		"description":  field.Description,
		"required":     required,
		"value":        value,
		"widget":       widget,
		"options":      options,
		"rows":         textareaRows(field.UIHints),
		"icon":         field.UIHints["icon"],
		"add_on_enter": addOnEnter,
		"errors":       b.options.Errors[path],
	}

	control, err := b.renderer.templates.RenderTemplate(b.template(widget, desc.Template), map[string]any{"field": view})
	if err != nil {
		return "", fmt.Errorf("render %s control for %q: %w", widget, path, err)
	}
	view["control"] = control
	return b.renderer.templates.RenderTemplate("templates/components/field.tmpl", map[string]any{"field": view})
}

func (b *viewBuilder) list(list model.List) (string, error) {
	widget, _ := b.renderer.widgets.ResolveList(list)
	if hinted := list.UIHints[widgets.HintKey]; hinted != "" {
		widget = hinted
	}
	desc, ok := b.renderer.components.Descriptor(widget)
	if !ok || !desc.List {
		return "", fmt.Errorf("list component %q not registered for %q", widget, list.Name)
	}
	b.markUsed(widget)

	scalar := list.Shape == model.ItemShapeScalar
	addID := controlID(b.snapshot.Schema.ID, list.Name, "add")

	items := make([]map[string]any, 0, len(b.snapshot.Lists[list.Name]))
	for idx, item := range b.snapshot.Lists[list.Name] {
		values := make([]map[string]any, 0, len(list.Fields))
		for _, sub := range list.Fields {
			values = append(values, map[string]any{"name": sub.Name, "label": sub.Label, "value": item.Value(sub.Name)})
		}
		items = append(items, map[string]any{
			"index":    idx,
			"position": idx + 1,
			"text":     item.Text(),
			"values":   values,
		})
	}

	staging := make([]map[string]any, 0, len(list.Fields))
	for _, sub := range list.Fields {
		enter := ""
		if scalar {
			enter = addID
		}
		path := list.Name + "." + sub.Name
		markup, err := b.field(sub, path, StageInputName(list.Name, sub.Name), b.snapshot.StagedValue(list.Name, sub.Name), false, enter)
		if err != nil {
			return "", err
		}
		staging = append(staging, map[string]any{"name": sub.Name, "markup": markup})
	}

	addLabel := list.AddLabel
	if addLabel == "" {
		addLabel = "Add"
	}
	view := map[string]any{
		"name":        list.Name,
		"label":       list.Label,
		"description": list.Description,
		"scalar":      scalar,
		"add_id":      addID,
		"add_label":   addLabel,
		"items":       items,
		"staging":     staging,
		"errors":      b.options.Errors[list.Name],
	}
	return b.renderer.templates.RenderTemplate(b.template(widget, desc.Template), map[string]any{"list": view})
}

func (b *viewBuilder) widgetFor(field model.Field) string {
	if hinted := field.UIHints[widgets.HintKey]; hinted != "" {
		if _, ok := b.renderer.components.Descriptor(hinted); ok {
			return hinted
		}
	}
	widget, ok := b.renderer.widgets.Resolve(field)
	if !ok {
		return widgets.WidgetInput
	}
	return widget
}

// template lets a theme override a widget partial through the
// "contentforms.<widget>" partial key.
func (b *viewBuilder) template(widget, fallback string) string {
	if theme := b.options.Theme; theme != nil {
		if override := theme.Partials["contentforms."+widget]; override != "" {
			return override
		}
	}
	return fallback
}

func (b *viewBuilder) markUsed(widget string) {
	if !slices.Contains(b.used, widget) {
		b.used = append(b.used, widget)
	}
}

func (b *viewBuilder) stylesheets() []string {
	out := b.renderer.components.Stylesheets(b.used)
	if theme := b.options.Theme; theme != nil && theme.AssetURL != nil {
		if href := theme.AssetURL("stylesheet"); href != "" {
			out = append(out, href)
		}
	}
	return out
}

func submitLabel(schema model.FormSchema) string {
	if schema.SubmitLabel != "" {
		return schema.SubmitLabel
	}
	return "Save"
}
