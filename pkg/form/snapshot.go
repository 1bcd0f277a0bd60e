package form

import "github.com/goliatone/go-contentforms/pkg/model"

// FillState is the quick-fill sub-state.
type FillState string

const (
	FillIdle       FillState = "idle"
	FillGenerating FillState = "generating"
	FillFailed     FillState = "failed"
)

func (s FillState) String() string {
	return string(s)
}

// Snapshot is a detached, read-only copy of a form's state. Renderers and
// HTTP handlers work from snapshots so they never hold the form lock.
type Snapshot struct {
	Schema   model.FormSchema
	Open     bool
	Record   Record
	Lists    map[string][]Item
	Staging  map[string]map[string]string
	Subject  string
	Fill     FillState
	FillErr  error
	Revision uint64
}

// Generating reports whether a quick-fill is pending.
func (s Snapshot) Generating() bool {
	return s.Fill == FillGenerating
}

// StagedValue returns the staged input for a list sub-field.
func (s Snapshot) StagedValue(list, field string) string {
	return s.Staging[list][field]
}

// Payload builds the payload the form would submit right now.
func (s Snapshot) Payload() Payload {
	lists := make(map[string]List[Item], len(s.Lists))
	for name, items := range s.Lists {
		lists[name] = NewList(items...)
	}
	return buildPayload(s.Schema, s.Record, lists)
}
