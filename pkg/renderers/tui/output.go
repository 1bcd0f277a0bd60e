package tui

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/render"
)

func serialize(format OutputFormat, schema model.FormSchema, payload form.Payload) ([]byte, error) {
	switch format {
	case OutputFormatFormURLEncoded:
		return []byte(encodeForm(schema, payload).Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPayload(schema, payload)), nil
	default:
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode payload: %w", err)
		}
		return out, nil
	}
}

// encodeForm flattens the payload into form values: value lists repeat their
// key and item lists use "list[index].field".
func encodeForm(schema model.FormSchema, payload form.Payload) url.Values {
	values := url.Values{}
	for _, field := range schema.Fields {
		values.Set(field.Name, payload.String(field.Name))
	}
	for _, list := range schema.Lists {
		if list.Flatten == model.FlattenValue {
			for _, value := range payload.Strings(list.Name) {
				values.Add(list.Name, value)
			}
			continue
		}
		for i, item := range payload.Items(list.Name) {
			for _, key := range item.Keys() {
				values.Set(fmt.Sprintf("%s[%d].%s", list.Name, i, key), item.Value(key))
			}
		}
	}
	return values
}

func prettyPayload(schema model.FormSchema, payload form.Payload) string {
	var b strings.Builder
	b.WriteString(schema.Title)
	b.WriteString("\n")
	for _, field := range schema.Fields {
		fmt.Fprintf(&b, "%s: %s\n", field.Label, payload.String(field.Name))
	}
	for _, list := range schema.Lists {
		fmt.Fprintf(&b, "%s:\n", list.Label)
		if list.Flatten == model.FlattenValue {
			for _, value := range payload.Strings(list.Name) {
				fmt.Fprintf(&b, "  - %s\n", value)
			}
			continue
		}
		for _, item := range payload.Items(list.Name) {
			fmt.Fprintf(&b, "  - %s\n", itemLabel(list, item))
		}
	}
	return b.String()
}

func prettySnapshot(snap form.Snapshot, opts render.RenderOptions) string {
	var b strings.Builder
	b.WriteString(prettyPayload(snap.Schema, snap.Payload()))
	switch snap.Fill {
	case form.FillGenerating:
		fmt.Fprintf(&b, "Quick-fill: generating for %q\n", snap.Subject)
	case form.FillFailed:
		fmt.Fprintf(&b, "Quick-fill: failed (%v)\n", snap.FillErr)
	}
	for _, msg := range opts.FormErrors {
		fmt.Fprintf(&b, "! %s\n", msg)
	}
	paths := make([]string, 0, len(opts.Errors))
	for path := range opts.Errors {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		for _, msg := range opts.Errors[path] {
			fmt.Fprintf(&b, "! %s: %s\n", path, msg)
		}
	}
	return b.String()
}

func summarizeItems(list model.List, items []form.Item) string {
	if len(items) == 0 {
		return "(empty)"
	}
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = itemLabel(list, item)
	}
	return strings.Join(labels, ", ")
}

func itemLabel(list model.List, item form.Item) string {
	if list.Shape == model.ItemShapeScalar {
		return item.Text()
	}
	parts := make([]string, 0, len(list.Fields))
	for _, sub := range list.Fields {
		value := item.Value(sub.Name)
		if len([]rune(value)) > 40 {
			value = string([]rune(value)[:40]) + "..."
		}
		parts = append(parts, fmt.Sprintf("%s: %s", sub.Label, value))
	}
	return strings.Join(parts, " | ")
}
