package form

import (
	"bytes"
	"encoding/json"

	"github.com/goliatone/go-contentforms/pkg/model"
)

// Item is one entry of an editable list. Sub-field order follows the list
// schema, so composite items serialise as {"title": ..., "content": ...}.
type Item struct {
	keys   []string
	values map[string]string
}

func newItem(list model.List, values map[string]string) Item {
	item := Item{
		keys:   make([]string, 0, len(list.Fields)),
		values: make(map[string]string, len(list.Fields)),
	}
	for _, field := range list.Fields {
		item.keys = append(item.keys, field.Name)
		item.values[field.Name] = values[field.Name]
	}
	return item
}

// Value returns the sub-field value.
func (i Item) Value(key string) string {
	return i.values[key]
}

// Text returns the value of a scalar item.
func (i Item) Text() string {
	return i.values[model.ScalarItemField]
}

// Keys returns the sub-field names in order.
func (i Item) Keys() []string {
	return append([]string(nil), i.keys...)
}

// Map returns a copy of the sub-field values.
func (i Item) Map() map[string]string {
	out := make(map[string]string, len(i.values))
	for key, value := range i.values {
		out[key] = value
	}
	return out
}

// MarshalJSON writes the item as an object with keys in schema order.
func (i Item) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for idx, key := range i.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(i.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
