package form_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/quickfill"
)

// gatedGenerator blocks every Generate call until release receives a result.
type gatedGenerator struct {
	started chan quickfill.Request
	release chan gatedResult
}

type gatedResult struct {
	dataset model.Dataset
	err     error
}

func newGatedGenerator() *gatedGenerator {
	return &gatedGenerator{
		started: make(chan quickfill.Request, 4),
		release: make(chan gatedResult, 4),
	}
}

func (g *gatedGenerator) Generate(ctx context.Context, req quickfill.Request) (model.Dataset, error) {
	g.started <- req
	select {
	case res := <-g.release:
		return res.dataset, res.err
	case <-ctx.Done():
		return model.Dataset{}, ctx.Err()
	}
}

func waitSettled(t *testing.T, f *form.Form) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestQuickFill_BlankSubjectIsNoop(t *testing.T) {
	gen := newGatedGenerator()
	f := mustForm(t, "brand_voice", form.WithGenerator(gen))

	_ = f.SetSubject("   ")
	started, err := f.QuickFill()
	if err != nil || started {
		t.Fatalf("quick fill with blank subject = %v, %v", started, err)
	}
	if got := f.Snapshot().Fill; got != form.FillIdle {
		t.Fatalf("state = %s, want idle", got)
	}
}

func TestQuickFill_ReplacesStateWithCannedDataset(t *testing.T) {
	after := make(chan time.Time)
	mock := quickfill.NewMock(quickfill.WithAfter(func(time.Duration) <-chan time.Time { return after }))

	var transitions []form.FillState
	f := mustForm(t, "brand_voice",
		form.WithGenerator(mock),
		form.WithOnFillChange(func(state form.FillState, _ error) { transitions = append(transitions, state) }),
	)
	_ = f.SetField("tone", "overwritten")
	_ = f.Stage("dos", "text", "old")
	_, _ = f.Add("dos")
	_ = f.SetSubject("acme.com")

	started, err := f.QuickFill()
	if err != nil || !started {
		t.Fatalf("quick fill = %v, %v", started, err)
	}
	snap := f.Snapshot()
	if !snap.Generating() {
		t.Fatalf("expected generating state")
	}
	if err := f.SetSubject("other"); !errors.Is(err, form.ErrGenerating) {
		t.Fatalf("subject must be disabled while generating, got %v", err)
	}
	if _, err := f.QuickFill(); !errors.Is(err, form.ErrGenerating) {
		t.Fatalf("trigger must be disabled while generating, got %v", err)
	}

	after <- time.Now()
	waitSettled(t, f)

	snap = f.Snapshot()
	if snap.Fill != form.FillIdle {
		t.Fatalf("state = %s, want idle", snap.Fill)
	}
	if got := snap.Record.Get("name"); got != "Friendly Expert" {
		t.Fatalf("name = %q", got)
	}
	if got := snap.Record.Get("tone"); got != "Warm, confident, and approachable" {
		t.Fatalf("tone = %q", got)
	}
	payload := snap.Payload()
	if got := len(payload.Items("examples")); got != 2 {
		t.Fatalf("examples = %d, want 2", got)
	}
	dos := payload.Items("dos")
	if len(dos) != 3 || dos[0].Text() != "Use active voice" {
		t.Fatalf("dos not replaced: %v", mustJSON(t, dos))
	}
	if diff := cmp.Diff([]form.FillState{form.FillGenerating, form.FillIdle}, transitions); diff != "" {
		t.Fatalf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestQuickFill_CompletesWhileClosed(t *testing.T) {
	gen := newGatedGenerator()
	f := mustForm(t, "story_element", form.WithGenerator(gen))
	_ = f.SetSubject("outage")
	if _, err := f.QuickFill(); err != nil {
		t.Fatalf("quick fill: %v", err)
	}
	<-gen.started

	_ = f.SetOpen(false)
	gen.release <- gatedResult{dataset: model.Dataset{Record: map[string]string{"name": "Late"}}}
	waitSettled(t, f)

	_ = f.SetOpen(true)
	snap := f.Snapshot()
	if got := snap.Record.Get("name"); got != "Late" {
		t.Fatalf("name = %q, want completion applied after close", got)
	}
	if got := snap.Record.Get("content"); got != "" {
		t.Fatalf("missing fields must be blank, got %q", got)
	}
}

func TestQuickFill_FailureAndRetry(t *testing.T) {
	gen := newGatedGenerator()
	f := mustForm(t, "story_element", form.WithGenerator(gen))
	_ = f.SetSubject("topic")

	if err := f.Retry(); !errors.Is(err, form.ErrNotFailed) {
		t.Fatalf("retry from idle = %v", err)
	}

	_, _ = f.QuickFill()
	<-gen.started
	boom := errors.New("backend down")
	gen.release <- gatedResult{err: boom}
	waitSettled(t, f)

	snap := f.Snapshot()
	if snap.Fill != form.FillFailed {
		t.Fatalf("state = %s, want failed", snap.Fill)
	}
	var genErr *form.GenerationError
	if !errors.As(snap.FillErr, &genErr) || genErr.Subject != "topic" || !errors.Is(snap.FillErr, boom) {
		t.Fatalf("fill error = %v", snap.FillErr)
	}

	if err := f.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	req := <-gen.started
	if req.Subject != "topic" || req.FormID != "story_element" {
		t.Fatalf("retry request = %+v", req)
	}
	gen.release <- gatedResult{dataset: model.Dataset{Record: map[string]string{"name": "Recovered"}}}
	waitSettled(t, f)
	if got := f.Snapshot(); got.Fill != form.FillIdle || got.Record.Get("name") != "Recovered" {
		t.Fatalf("retry result = %s %q", got.Fill, got.Record.Get("name"))
	}
}

func TestQuickFill_EditGuard(t *testing.T) {
	gen := newGatedGenerator()
	f := mustForm(t, "story_element", form.WithGenerator(gen), form.WithEditGuard(true))
	_ = f.SetSubject("topic")
	_, _ = f.QuickFill()
	<-gen.started

	_ = f.SetField("name", "mine")
	gen.release <- gatedResult{dataset: model.Dataset{Record: map[string]string{"name": "theirs"}}}
	waitSettled(t, f)

	snap := f.Snapshot()
	if got := snap.Record.Get("name"); got != "mine" {
		t.Fatalf("edit guard overwrote user input: %q", got)
	}
	if !errors.Is(snap.FillErr, form.ErrEditedDuringGeneration) {
		t.Fatalf("fill error = %v", snap.FillErr)
	}
}

func TestQuickFill_DisposeDropsCompletion(t *testing.T) {
	gen := newGatedGenerator()
	f, err := form.New(mustSchema(t, "story_element"), form.WithGenerator(gen))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = f.SetSubject("topic")
	_, _ = f.QuickFill()
	<-gen.started

	f.Dispose()
	waitSettled(t, f)

	if err := f.SetField("name", "x"); !errors.Is(err, form.ErrDisposed) {
		t.Fatalf("expected ErrDisposed, got %v", err)
	}
	if got := f.Snapshot().Record.Get("name"); got != "" {
		t.Fatalf("disposed form applied a completion: %q", got)
	}
}

func TestQuickFill_ResetOnOpenAbandonsPending(t *testing.T) {
	gen := newGatedGenerator()
	f := mustForm(t, "story_element", form.WithGenerator(gen), form.WithResetOnOpen(true))
	_ = f.SetSubject("topic")
	_, _ = f.QuickFill()
	<-gen.started

	_ = f.SetOpen(false)
	_ = f.SetOpen(true)
	waitSettled(t, f)

	snap := f.Snapshot()
	if snap.Fill != form.FillIdle || snap.Record.Get("name") != "" {
		t.Fatalf("reset did not abandon generation: %s %q", snap.Fill, snap.Record.Get("name"))
	}
}

func TestQuickFill_Disabled(t *testing.T) {
	s := mustSchema(t, "story_element")
	s.QuickFill.Enabled = false
	f, err := form.New(s)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer f.Dispose()
	_ = f.SetSubject("x")
	if _, err := f.QuickFill(); !errors.Is(err, form.ErrQuickFillDisabled) {
		t.Fatalf("expected ErrQuickFillDisabled, got %v", err)
	}
}

func TestApply_NormalisesDataset(t *testing.T) {
	f := mustForm(t, "story_element")
	err := f.Apply(model.Dataset{
		Record: map[string]string{"name": " <b>Draft</b> ", "unknown": "x"},
		Lists:  map[string][]map[string]string{"tags": {{"text": "a"}, {"text": "  "}}},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	snap := f.Snapshot()
	if got := snap.Record.Get("name"); got != "Draft" {
		t.Fatalf("name = %q", got)
	}
	if diff := cmp.Diff([]string{"a"}, snap.Payload().Strings("tags")); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_KeepsPlainTextComparisons(t *testing.T) {
	f := mustForm(t, "story_element")
	err := f.Apply(model.Dataset{
		Record: map[string]string{
			"name":    "Fish & Chips",
			"content": "if a<b and c>d then swap",
			"context": "<p>Use <em>sparingly</em></p>",
		},
		Lists: map[string][]map[string]string{
			"tags": {{"text": "a<b"}, {"text": "R&D"}},
		},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	snap := f.Snapshot()
	want := map[string]string{
		"name":    "Fish & Chips",
		"content": "if a<b and c>d then swap",
		"context": "Use sparingly",
	}
	for name, value := range want {
		if got := snap.Record.Get(name); got != value {
			t.Errorf("%s = %q, want %q", name, got, value)
		}
	}
	if diff := cmp.Diff([]string{"a<b", "R&D"}, snap.Payload().Strings("tags")); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}
