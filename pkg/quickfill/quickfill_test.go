package quickfill

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contentforms/pkg/model"
)

func testSchema() model.FormSchema {
	return model.FormSchema{
		ID:    "brand_voice",
		Title: "Brand Voice",
		Fields: []model.Field{
			{Name: "name", Label: "Name", Required: true},
			{Name: "tone", Label: "Tone"},
			{Name: "preferred_model", Label: "Preferred Model", Enum: []string{"gpt-4o", "gpt-4o-mini"}},
		},
		Lists: []model.List{
			{
				Name:    "examples",
				Label:   "Examples",
				Shape:   model.ItemShapeComposite,
				Flatten: model.FlattenObject,
				Fields: []model.Field{
					{Name: "title", Required: true},
					{Name: "content", Required: true},
				},
			},
			{
				Name:    "dos",
				Label:   "Do's",
				Shape:   model.ItemShapeScalar,
				Flatten: model.FlattenObject,
				Fields:  []model.Field{{Name: model.ScalarItemField, Required: true}},
			},
		},
		QuickFill: model.QuickFill{
			Enabled: true,
			Delay:   2500 * time.Millisecond,
			Dataset: model.Dataset{
				Record: map[string]string{"name": "Friendly Expert", "tone": "Warm"},
				Lists: map[string][]map[string]string{
					"dos": {{"text": "Use active voice"}},
				},
			},
		},
	}
}

func TestMock_WaitsForDelayThenReturnsCannedDataset(t *testing.T) {
	release := make(chan time.Time)
	var requested time.Duration
	mock := NewMock(WithAfter(func(d time.Duration) <-chan time.Time {
		requested = d
		return release
	}))

	schema := testSchema()
	done := make(chan model.Dataset, 1)
	go func() {
		ds, err := mock.Generate(context.Background(), Request{FormID: schema.ID, Subject: "acme.com", Schema: schema})
		if err != nil {
			t.Errorf("generate: %v", err)
		}
		done <- ds
	}()

	select {
	case <-done:
		t.Fatalf("generation finished before the delay elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	release <- time.Now()
	got := <-done
	if requested != 2500*time.Millisecond {
		t.Fatalf("expected schema delay, got %s", requested)
	}
	if diff := cmp.Diff(schema.QuickFill.Dataset, got); diff != "" {
		t.Fatalf("dataset mismatch (-want +got):\n%s", diff)
	}
}

func TestMock_IsDeterministicAndIgnoresSubject(t *testing.T) {
	mock := NewMock(WithDelay(0))
	schema := testSchema()

	first, err := mock.Generate(context.Background(), Request{FormID: schema.ID, Subject: "one", Schema: schema})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := mock.Generate(context.Background(), Request{FormID: schema.ID, Subject: "something else", Schema: schema})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("mock output depends on subject (-first +second):\n%s", diff)
	}

	first.Record["name"] = "mutated"
	third, _ := mock.Generate(context.Background(), Request{FormID: schema.ID, Schema: schema})
	if third.Record["name"] != "Friendly Expert" {
		t.Fatalf("mock leaked a shared dataset")
	}
}

func TestMock_PinnedDataset(t *testing.T) {
	pinned := model.Dataset{Record: map[string]string{"name": "Pinned"}}
	mock := NewMock(WithDelay(0), WithDataset("brand_voice", pinned))
	got, err := mock.Generate(context.Background(), Request{FormID: "brand_voice", Schema: testSchema()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got.Record["name"] != "Pinned" {
		t.Fatalf("expected pinned dataset, got %#v", got)
	}
}

func TestMock_CancelledContext(t *testing.T) {
	mock := NewMock(WithAfter(func(time.Duration) <-chan time.Time { return nil }))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := mock.Generate(ctx, Request{Schema: testSchema()})
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("mock ignored cancellation")
	}
}

func TestNormalize(t *testing.T) {
	schema := testSchema()
	dataset := model.Dataset{
		Record: map[string]string{
			"name":    "  <b>Acme</b> Voice ",
			"unknown": "dropped",
		},
		Lists: map[string][]map[string]string{
			"examples": {
				{"title": "Launch", "content": "We're live & ready"},
				{"title": "  ", "content": "missing title"},
				{"title": "Extra", "content": "kept", "mood": "dropped"},
			},
			"dos":    {{"text": "<script>alert(1)</script>"}, {"text": "Be brief"}},
			"ghosts": {{"text": "dropped"}},
		},
	}

	got := Normalize(schema, dataset)
	want := model.Dataset{
		Record: map[string]string{"name": "Acme Voice", "tone": "", "preferred_model": ""},
		Lists: map[string][]map[string]string{
			"examples": {
				{"title": "Launch", "content": "We're live & ready"},
				{"title": "Extra", "content": "kept"},
			},
			"dos": {{"text": "Be brief"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"plain":                       "plain",
		"  padded  ":                  "padded",
		"<p>Hello <em>there</em></p>": "Hello there",
		`Say "hi" & wave`:             `Say "hi" & wave`,
		"":                            "",
		"if a<b and c>d then swap":    "if a<b and c>d then swap",
		"x < y && y > z":              "x < y && y > z",
		"Tom & Jerry <3":              "Tom & Jerry <3",
		"line<br>break":               "linebreak",
		"<script>alert(1)</script>ok": "ok",
	}
	for input, want := range cases {
		if got := SanitizeText(input); got != want {
			t.Errorf("SanitizeText(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseDataset(t *testing.T) {
	content := "```json\n" + `{
		"record": {"name": "Acme", "tone": "Bold", "count": 3},
		"lists": {"dos": ["Be brief", {"text": "Be kind"}], "examples": [{"title": "T", "content": "C"}]}
	}` + "\n```"

	got, err := ParseDataset(content)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := model.Dataset{
		Record: map[string]string{"name": "Acme", "tone": "Bold", "count": "3"},
		Lists: map[string][]map[string]string{
			"dos":      {{"text": "Be brief"}, {"text": "Be kind"}},
			"examples": {{"title": "T", "content": "C"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("parse mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseDataset("   "); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if _, err := ParseDataset("not json"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestBuildPrompt_DescribesSchema(t *testing.T) {
	prompt := BuildPrompt(Request{FormID: "brand_voice", Subject: " acme.com ", Schema: testSchema()})
	for _, want := range []string{
		`"Brand Voice" form for this subject: acme.com`,
		"- name: Name [required]",
		"(one of: gpt-4o, gpt-4o-mini)",
		"- examples: Examples, item keys: title, content",
		`"record":`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
