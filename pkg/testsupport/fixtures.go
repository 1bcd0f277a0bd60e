// Package testsupport holds helpers shared by the renderer and transport tests.
package testsupport

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/quickfill"
	"github.com/goliatone/go-contentforms/pkg/schema"
)

// MustSchema returns one of the embedded form declarations.
func MustSchema(t *testing.T, id string) model.FormSchema {
	t.Helper()

	store, err := schema.Default()
	if err != nil {
		t.Fatalf("load default schemas: %v", err)
	}
	s, ok := store.Form(id)
	if !ok {
		t.Fatalf("schema %q not found", id)
	}
	return s
}

// MustForm builds a live form for an embedded declaration. The form uses an
// instant mock generator unless opts override it, and is disposed when the
// test ends.
func MustForm(t *testing.T, id string, opts ...form.Option) *form.Form {
	t.Helper()

	opts = append([]form.Option{form.WithGenerator(quickfill.NewMock(quickfill.WithDelay(0)))}, opts...)
	f, err := form.New(MustSchema(t, id), opts...)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	t.Cleanup(f.Dispose)
	return f
}

// CompactJSON strips insignificant whitespace so payloads compare as strings.
func CompactJSON(t *testing.T, raw []byte) string {
	t.Helper()

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		t.Fatalf("compact %s: %v", raw, err)
	}
	return buf.String()
}
