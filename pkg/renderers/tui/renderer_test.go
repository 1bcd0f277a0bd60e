package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/quickfill"
	"github.com/goliatone/go-contentforms/pkg/render"
	"github.com/goliatone/go-contentforms/pkg/testsupport"
)

// keep makes the stub answer with the prompt's default.
const keep = "\x00keep"

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	confirmPos   int
	textPos      int
	selects      []SelectConfig
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted for " + cfg.Message)
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if val == keep {
		return cfg.Default, nil
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted for " + cfg.Message)
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.selects = append(s.selects, cfg)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted for " + cfg.Message)
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	if val < 0 {
		return cfg.DefaultIndex, nil
	}
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted for " + cfg.Message)
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	if val == keep {
		return cfg.Default, nil
	}
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRun_StoryElementWithTag(t *testing.T) {
	driver := &stubDriver{
		confirm:   []bool{false},
		inputs:    []string{"X", "go", "  "},
		textAreas: []string{"Y", ""},
		// element_type, tags: add, tags: add (blank), tags: done, submit
		selectIdx: []int{1, 0, 0, 2, 0},
	}
	var submitted int
	f := testsupport.MustForm(t, "story_element", form.WithOnSubmit(func(form.Payload) { submitted++ }))

	out, err := New(WithPromptDriver(driver)).Run(context.Background(), f)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := `{"name":"X","element_type":"Anecdote","content":"Y","context":"","tags":["go"]}`
	if got := testsupport.CompactJSON(t, out); got != want {
		t.Fatalf("payload mismatch\n got: %s\nwant: %s", got, want)
	}
	if submitted != 1 {
		t.Fatalf("expected one submission, got %d", submitted)
	}
	if diff := cmp.Diff([]string{noneOption, "Anecdote", "Statistic", "Quote", "Case Study", "Metaphor", "Personal Story"}, driver.selects[0].Options); diff != "" {
		t.Fatalf("element type options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Add Tag", "Remove an item", "Done"}, driver.selects[2].Options); diff != "" {
		t.Fatalf("tag menu mismatch (-want +got):\n%s", diff)
	}
	if !containsMessage(driver.infoMessages, "! missing text") {
		t.Fatalf("expected blank tag to be rejected, got %v", driver.infoMessages)
	}
}

func TestRun_QuickFillKeepsGeneratedValues(t *testing.T) {
	driver := &stubDriver{
		confirm:   []bool{true},
		inputs:    []string{"outage", keep},
		textAreas: []string{keep, keep},
		// element_type default, tags done, submit
		selectIdx: []int{-1, 2, 0},
	}
	f := testsupport.MustForm(t, "story_element")

	out, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded)).Run(context.Background(), f)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	got := string(out)
	for _, want := range []string{
		"name=The+3+AM+Debugging+Session",
		"element_type=Anecdote",
		"tags=debugging&tags=incident+response&tags=engineering+culture",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %s", want, got)
		}
	}
	if !containsMessage(driver.infoMessages, "Quick-fill applied.") {
		t.Fatalf("expected quick-fill confirmation, got %v", driver.infoMessages)
	}
}

func TestRun_QuickFillRetryAfterFailure(t *testing.T) {
	calls := 0
	generator := quickfill.GeneratorFunc(func(ctx context.Context, req quickfill.Request) (model.Dataset, error) {
		calls++
		if calls == 1 {
			return model.Dataset{}, errors.New("backend down")
		}
		return req.Schema.QuickFill.Dataset, nil
	})
	driver := &stubDriver{
		confirm:   []bool{true, true},
		inputs:    []string{"outage", keep},
		textAreas: []string{keep, keep},
		selectIdx: []int{-1, 2, 0},
	}
	f := testsupport.MustForm(t, "story_element", form.WithGenerator(generator))

	out, err := New(WithPromptDriver(driver)).Run(context.Background(), f)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected two generations, got %d", calls)
	}
	if !strings.Contains(string(out), `"The 3 AM Debugging Session"`) {
		t.Fatalf("expected generated name in %s", out)
	}
}

func TestRun_RequiredFieldLoopsBack(t *testing.T) {
	driver := &stubDriver{
		confirm:   []bool{false},
		inputs:    []string{"", "Named"},
		textAreas: []string{"", "", keep, keep},
		// first pass: type, tags done, submit; second pass: type, tags done, submit
		selectIdx: []int{0, 1, 0, -1, 1, 0},
	}
	f := testsupport.MustForm(t, "story_element")

	out, err := New(WithPromptDriver(driver)).Run(context.Background(), f)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !containsMessage(driver.infoMessages, "! name: is required") {
		t.Fatalf("expected required message, got %v", driver.infoMessages)
	}
	want := `{"name":"Named","element_type":"","content":"","context":"","tags":[]}`
	if got := testsupport.CompactJSON(t, out); got != want {
		t.Fatalf("payload mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestRun_BrandVoiceAddRemoveAndCancel(t *testing.T) {
	driver := &stubDriver{
		confirm:   []bool{false},
		inputs:    []string{"Voice", "", "Launch", "active voice"},
		textAreas: []string{"", "", "body"},
		selectIdx: []int{
			-1,   // preferred_model
			0,    // examples: add
			1,    // examples: remove
			0,    // remove "Launch"
			1,    // examples: done
			0,    // dos: add
			2,    // dos: done
			1,    // donts: done
			2,    // cancel
		},
	}
	var closes []bool
	f := testsupport.MustForm(t, "brand_voice", form.WithOnOpenChange(func(open bool) { closes = append(closes, open) }))

	_, err := New(WithPromptDriver(driver)).Run(context.Background(), f)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if diff := cmp.Diff([]bool{false}, closes); diff != "" {
		t.Fatalf("close requests mismatch (-want +got):\n%s", diff)
	}

	snap := f.Snapshot()
	if n := len(snap.Lists["examples"]); n != 0 {
		t.Fatalf("expected example removed, got %d items", n)
	}
	if got := snap.Lists["dos"]; len(got) != 1 || got[0].Text() != "active voice" {
		t.Fatalf("unexpected dos: %v", got)
	}
	if diff := cmp.Diff([]string{"Title: Launch | Content: body", "Back"}, driver.selects[3].Options); diff != "" {
		t.Fatalf("remove menu mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_PrettySnapshot(t *testing.T) {
	f := testsupport.MustForm(t, "story_element")
	if err := f.SetField("name", "X"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := f.Stage("tags", "text", "go"); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if _, err := f.Add("tags"); err != nil {
		t.Fatalf("add: %v", err)
	}

	r := New(WithOutputFormat(OutputFormatPrettyText))
	out, err := r.Render(context.Background(), f.Snapshot(), render.RenderOptions{
		Errors: map[string][]string{"content": {"is too long"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := strings.Join([]string{
		"Create Story Element",
		"Name: X",
		"Type: ",
		"Content: ",
		"Context: ",
		"Tags:",
		"  - go",
		"! content: is too long",
		"",
	}, "\n")
	if diff := cmp.Diff(want, string(out)); diff != "" {
		t.Fatalf("pretty output mismatch (-want +got):\n%s", diff)
	}
	if r.ContentType() != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRun_RequiresDriverAndForm(t *testing.T) {
	r := &Renderer{}
	if _, err := r.Run(context.Background(), nil); !errors.Is(err, ErrNoDriver) {
		t.Fatalf("expected ErrNoDriver, got %v", err)
	}
	if _, err := New(WithPromptDriver(&stubDriver{})).Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil form")
	}
}

func containsMessage(messages []string, want string) bool {
	for _, msg := range messages {
		if msg == want {
			return true
		}
	}
	return false
}
