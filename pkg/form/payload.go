package form

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-contentforms/pkg/model"
)

// Payload is the submission produced by Submit: every record field in schema
// order followed by every list. Object-flattened lists hold []Item; value
// lists hold []string. Lists are never nil, so empty lists encode as [].
type Payload struct {
	keys   []string
	values map[string]any
}

func buildPayload(schema model.FormSchema, record Record, lists map[string]List[Item]) Payload {
	p := Payload{
		keys:   make([]string, 0, len(schema.Fields)+len(schema.Lists)),
		values: make(map[string]any, len(schema.Fields)+len(schema.Lists)),
	}
	for _, field := range schema.Fields {
		p.keys = append(p.keys, field.Name)
		p.values[field.Name] = record.Get(field.Name)
	}
	for _, list := range schema.Lists {
		p.keys = append(p.keys, list.Name)
		items := lists[list.Name].Items()
		if list.Flatten == model.FlattenValue {
			flat := make([]string, 0, len(items))
			for _, item := range items {
				flat = append(flat, item.Text())
			}
			p.values[list.Name] = flat
			continue
		}
		if items == nil {
			items = []Item{}
		}
		p.values[list.Name] = items
	}
	return p
}

// Keys returns the payload keys in emission order.
func (p Payload) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Len returns the number of top-level keys.
func (p Payload) Len() int {
	return len(p.keys)
}

// Has reports whether key is present.
func (p Payload) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// String returns a record field value.
func (p Payload) String(key string) string {
	value, _ := p.values[key].(string)
	return value
}

// Items returns the items of an object-flattened list.
func (p Payload) Items(key string) []Item {
	items, _ := p.values[key].([]Item)
	return append([]Item(nil), items...)
}

// Strings returns the values of a value-flattened list.
func (p Payload) Strings(key string) []string {
	values, _ := p.values[key].([]string)
	return append([]string(nil), values...)
}

// Map returns a plain, detached representation suitable for JSON schema
// validation and templates: strings, []string and []map[string]any.
func (p Payload) Map() map[string]any {
	out := make(map[string]any, len(p.values))
	for key, value := range p.values {
		switch typed := value.(type) {
		case []Item:
			items := make([]any, 0, len(typed))
			for _, item := range typed {
				entry := make(map[string]any, len(item.keys))
				for _, k := range item.keys {
					entry[k] = item.values[k]
				}
				items = append(items, entry)
			}
			out[key] = items
		case []string:
			values := make([]any, 0, len(typed))
			for _, v := range typed {
				values = append(values, v)
			}
			out[key] = values
		default:
			out[key] = value
		}
	}
	return out
}

// MarshalJSON writes the payload with keys in schema order.
func (p Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, key := range p.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.values[key])
		if err != nil {
			return nil, fmt.Errorf("form: encode %q: %w", key, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode copies the payload into a typed struct through its JSON encoding.
func (p Payload) Decode(target any) error {
	raw, err := p.MarshalJSON()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("form: decode payload: %w", err)
	}
	return nil
}
