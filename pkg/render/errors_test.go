package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/render"
)

func voiceSchema() model.FormSchema {
	return model.FormSchema{
		ID: "brand_voice",
		Fields: []model.Field{
			{Name: "name", Type: model.FieldTypeString, Required: true},
			{Name: "preferred_model", Type: model.FieldTypeString},
		},
		Lists: []model.List{{
			Name: "examples", Shape: model.ItemShapeComposite, Flatten: model.FlattenObject,
			Fields: []model.Field{{Name: "title"}, {Name: "content"}},
		}},
	}
}

func TestMapErrorPayload(t *testing.T) {
	payload := map[string][]string{
		"/body/name":                {"Name is required"},
		"examples.0.title":          {"Title is required"},
		"$.payload.examples[1]":     {"Example invalid"},
		"#/preferred_model":         {"Unknown model", " Unknown model "},
		"non_field_errors":          {"Form level error"},
		"request/body/unknown":      {"Falls back to form errors"},
		"":                          {"Unscoped"},
		"examples.2.content/nested": {"Content too long"},
	}

	mapped := render.MapErrorPayload(voiceSchema(), payload)

	wantFields := map[string][]string{
		"name":             {"Name is required"},
		"examples.title":   {"Title is required"},
		"examples":         {"Example invalid"},
		"preferred_model":  {"Unknown model"},
		"examples.content": {"Content too long"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	wantForm := []string{"Form level error", "Falls back to form errors", "Unscoped"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapValidationError(t *testing.T) {
	err := &form.ValidationError{Issues: []form.FieldIssue{
		{Field: "name", Message: "is required"},
		{Field: "examples.0.content", Message: "is too long"},
	}}
	mapped := render.MapValidationError(voiceSchema(), err)
	want := map[string][]string{
		"name":             {"is required"},
		"examples.content": {"is too long"},
	}
	if diff := cmp.Diff(want, mapped.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	opts := render.RenderOptions{FormErrors: []string{"keep"}}.WithValidation(mapped)
	if diff := cmp.Diff([]string{"keep"}, opts.FormErrors); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	if diff := cmp.Diff([]string{"First", "Second", "third"}, merged); diff != "" {
		t.Fatalf("merged mismatch (-want +got):\n%s", diff)
	}
}
