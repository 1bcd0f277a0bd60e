package quickfill

import (
	"github.com/goliatone/go-contentforms/pkg/model"
)

// Normalize projects a dataset onto schema: every record field is present
// (missing ones become empty), values are sanitised, unknown fields and lists
// are dropped, and list items missing a required sub-field are discarded so
// the editable-list invariant holds after a quick-fill.
func Normalize(schema model.FormSchema, dataset model.Dataset) model.Dataset {
	out := model.Dataset{
		Record: make(map[string]string, len(schema.Fields)),
		Lists:  make(map[string][]map[string]string, len(schema.Lists)),
	}

	for _, field := range schema.Fields {
		out.Record[field.Name] = SanitizeText(dataset.Record[field.Name])
	}

	for _, list := range schema.Lists {
		items := make([]map[string]string, 0, len(dataset.Lists[list.Name]))
		for _, raw := range dataset.Lists[list.Name] {
			item, ok := normalizeItem(list, raw)
			if !ok {
				continue
			}
			items = append(items, item)
		}
		out.Lists[list.Name] = items
	}
	return out
}

func normalizeItem(list model.List, raw map[string]string) (map[string]string, bool) {
	item := make(map[string]string, len(list.Fields))
	for _, field := range list.Fields {
		value := SanitizeText(raw[field.Name])
		if field.Required && value == "" {
			return nil, false
		}
		item[field.Name] = value
	}
	return item, true
}
