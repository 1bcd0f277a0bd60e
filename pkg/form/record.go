package form

import "github.com/goliatone/go-contentforms/pkg/model"

// Record is the ordered set of primary string fields. It is an immutable
// value: edits produce a new Record, so a Record obtained from a Snapshot
// never changes underneath the caller.
type Record struct {
	names  []string
	values map[string]string
}

func newRecord(fields []model.Field, values map[string]string) Record {
	r := Record{
		names:  make([]string, 0, len(fields)),
		values: make(map[string]string, len(fields)),
	}
	for _, field := range fields {
		r.names = append(r.names, field.Name)
		if values == nil {
			r.values[field.Name] = field.Default
			continue
		}
		r.values[field.Name] = values[field.Name]
	}
	return r
}

// Get returns the value of name, or "" when the field is unknown.
func (r Record) Get(name string) string {
	return r.values[name]
}

// Has reports whether name is part of the record.
func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Names returns the field names in schema order.
func (r Record) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.names)
}

// Map returns a copy of the field values.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for key, value := range r.values {
		out[key] = value
	}
	return out
}

func (r Record) with(name, value string) Record {
	next := Record{
		names:  r.names,
		values: make(map[string]string, len(r.values)),
	}
	for key, current := range r.values {
		next.values[key] = current
	}
	next.values[name] = value
	return next
}
