package quickfill

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-contentforms/pkg/model"
)

const systemPrompt = `You fill in structured content-creation forms. Reply with a single JSON object and nothing else.`

// BuildPrompt describes the form schema and the subject to the model and
// pins the JSON shape ParseDataset expects.
func BuildPrompt(req Request) string {
	var b strings.Builder
	title := req.Schema.Title
	if title == "" {
		title = req.FormID
	}
	fmt.Fprintf(&b, "Fill in the %q form for this subject: %s\n\n", title, strings.TrimSpace(req.Subject))
	if req.Schema.Description != "" {
		fmt.Fprintf(&b, "Form purpose: %s\n\n", req.Schema.Description)
	}

	b.WriteString("Record fields (all strings):\n")
	for _, field := range req.Schema.Fields {
		fmt.Fprintf(&b, "- %s: %s", field.Name, field.Label)
		if len(field.Enum) > 0 {
			fmt.Fprintf(&b, " (one of: %s)", strings.Join(field.Enum, ", "))
		}
		if field.Required {
			b.WriteString(" [required]")
		}
		b.WriteString("\n")
	}

	if len(req.Schema.Lists) > 0 {
		b.WriteString("\nLists (arrays of objects):\n")
		for _, list := range req.Schema.Lists {
			names := make([]string, 0, len(list.Fields))
			for _, field := range list.Fields {
				names = append(names, field.Name)
			}
			fmt.Fprintf(&b, "- %s: %s, item keys: %s\n", list.Name, list.Label, strings.Join(names, ", "))
		}
	}

	b.WriteString("\nRespond with JSON shaped exactly like this example:\n")
	example, _ := json.Marshal(exampleShape(req.Schema))
	b.Write(example)
	b.WriteString("\n")
	return b.String()
}

func exampleShape(schema model.FormSchema) map[string]any {
	record := make(map[string]string, len(schema.Fields))
	for _, field := range schema.Fields {
		record[field.Name] = "..."
	}
	lists := make(map[string][]map[string]string, len(schema.Lists))
	for _, list := range schema.Lists {
		item := make(map[string]string, len(list.Fields))
		for _, field := range list.Fields {
			item[field.Name] = "..."
		}
		lists[list.Name] = []map[string]string{item}
	}
	return map[string]any{"record": record, "lists": lists}
}

// ParseDataset decodes a model reply into a Dataset. Markdown code fences are
// tolerated, non-string scalars are stringified, and scalar list entries given
// as bare strings are wrapped into {"text": value}.
func ParseDataset(content string) (model.Dataset, error) {
	body := stripFences(content)
	if body == "" {
		return model.Dataset{}, ErrEmptyResponse
	}

	var raw struct {
		Record map[string]any   `json:"record"`
		Lists  map[string][]any `json:"lists"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return model.Dataset{}, fmt.Errorf("quickfill: decode dataset: %w", err)
	}

	dataset := model.Dataset{
		Record: make(map[string]string, len(raw.Record)),
		Lists:  make(map[string][]map[string]string, len(raw.Lists)),
	}
	for key, value := range raw.Record {
		dataset.Record[key] = stringify(value)
	}
	for name, entries := range raw.Lists {
		items := make([]map[string]string, 0, len(entries))
		for _, entry := range entries {
			switch typed := entry.(type) {
			case map[string]any:
				item := make(map[string]string, len(typed))
				for key, value := range typed {
					item[key] = stringify(value)
				}
				items = append(items, item)
			case nil:
			default:
				items = append(items, map[string]string{model.ScalarItemField: stringify(typed)})
			}
		}
		dataset.Lists[name] = items
	}
	return dataset, nil
}

func stripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}
