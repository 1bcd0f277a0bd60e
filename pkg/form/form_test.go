package form_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/schema"
)

func mustSchema(t *testing.T, id string) model.FormSchema {
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

func mustForm(t *testing.T, id string, opts ...form.Option) *form.Form {
	t.Helper()
	f, err := form.New(mustSchema(t, id), opts...)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	t.Cleanup(f.Dispose)
	return f
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}

func TestStoryElement_EndToEnd(t *testing.T) {
	var (
		mu        sync.Mutex
		submitted []form.Payload
		closes    []bool
	)
	f := mustForm(t, "story_element",
		form.WithOnSubmit(func(p form.Payload) {
			mu.Lock()
			defer mu.Unlock()
			submitted = append(submitted, p)
		}),
		form.WithOnOpenChange(func(open bool) {
			mu.Lock()
			defer mu.Unlock()
			closes = append(closes, open)
		}),
	)

	if err := f.Stage("tags", "text", "debugging"); err != nil {
		t.Fatalf("stage: %v", err)
	}
	res, err := f.Add("tags")
	if err != nil || !res.Added {
		t.Fatalf("add debugging: %+v %v", res, err)
	}
	if got := f.Snapshot().Payload().Strings("tags"); !cmp.Equal(got, []string{"debugging"}) {
		t.Fatalf("tags after add = %v", got)
	}

	res, err = f.Add("tags")
	if err != nil {
		t.Fatalf("add blank: %v", err)
	}
	if res.Added {
		t.Fatalf("blank tag should be rejected")
	}
	if diff := cmp.Diff([]string{"text"}, res.Missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
	if got := len(f.Snapshot().Lists["tags"]); got != 1 {
		t.Fatalf("tags length = %d, want 1", got)
	}

	removed, err := f.Remove("tags", 0)
	if err != nil || !removed {
		t.Fatalf("remove: %v %v", removed, err)
	}

	for name, value := range map[string]string{"name": "X", "element_type": "Anecdote", "content": "Y"} {
		if err := f.SetField(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
	payload, err := f.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := `{"name":"X","element_type":"Anecdote","content":"Y","context":"","tags":[]}`
	if got := mustJSON(t, payload); got != want {
		t.Fatalf("payload = %s\nwant %s", got, want)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(submitted) != 1 {
		t.Fatalf("onSubmit called %d times, want 1", len(submitted))
	}
	if diff := cmp.Diff([]bool{false}, closes); diff != "" {
		t.Fatalf("close requests mismatch (-want +got):\n%s", diff)
	}
}

func TestBrandVoice_AddExample(t *testing.T) {
	f := mustForm(t, "brand_voice")

	_ = f.Stage("examples", "title", "  T ")
	_ = f.Stage("examples", "content", "C")
	res, err := f.Add("examples")
	if err != nil || !res.Added || res.Index != 0 {
		t.Fatalf("add example: %+v %v", res, err)
	}

	snap := f.Snapshot()
	if got := snap.StagedValue("examples", "title"); got != "" {
		t.Fatalf("staging not cleared: %q", got)
	}

	_ = f.Stage("examples", "title", "")
	_ = f.Stage("examples", "content", "still here")
	res, _ = f.Add("examples")
	if res.Added {
		t.Fatalf("example without title should be rejected")
	}
	if got := f.Snapshot().StagedValue("examples", "content"); got != "still here" {
		t.Fatalf("rejected add must keep staging, got %q", got)
	}

	got := mustJSON(t, f.Snapshot().Payload().Items("examples"))
	if want := `[{"title":"T","content":"C"}]`; got != want {
		t.Fatalf("examples = %s, want %s", got, want)
	}
}

func TestBrandVoice_PayloadShape(t *testing.T) {
	f := mustForm(t, "brand_voice")
	_ = f.SetField("name", "Voice")
	_ = f.Stage("dos", "text", "Be brief")
	_, _ = f.Add("dos")

	payload, err := f.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	wantKeys := []string{"name", "description", "tone", "style_guidelines", "preferred_model", "examples", "dos", "donts"}
	if diff := cmp.Diff(wantKeys, payload.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if got := mustJSON(t, payload.Items("dos")); got != `[{"text":"Be brief"}]` {
		t.Fatalf("dos = %s", got)
	}
	if diff := cmp.Diff(map[string]any{
		"name": "Voice", "description": "", "tone": "", "style_guidelines": "", "preferred_model": "",
		"examples": []any{}, "dos": []any{map[string]any{"text": "Be brief"}}, "donts": []any{},
	}, payload.Map()); diff != "" {
		t.Fatalf("map mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyDown(t *testing.T) {
	f := mustForm(t, "brand_voice")

	_ = f.Stage("dos", "text", "  Use active voice  ")
	res, err := f.KeyDown("dos", form.KeyEnter)
	if err != nil {
		t.Fatalf("keydown: %v", err)
	}
	if !res.Handled || !res.SuppressDefault || !res.Add.Added {
		t.Fatalf("enter on scalar list = %+v", res)
	}
	if got := f.Snapshot().Lists["dos"][0].Text(); got != "Use active voice" {
		t.Fatalf("item text = %q", got)
	}

	res, _ = f.KeyDown("dos", form.KeyEnter)
	if !res.SuppressDefault || res.Add.Added {
		t.Fatalf("blank enter must suppress submit without adding: %+v", res)
	}

	res, _ = f.KeyDown("examples", form.KeyEnter)
	if res.Handled || res.SuppressDefault {
		t.Fatalf("composite list must not handle enter: %+v", res)
	}
	res, _ = f.KeyDown("dos", "a")
	if res.Handled {
		t.Fatalf("other keys are not handled: %+v", res)
	}
	if _, err := f.KeyDown("missing", form.KeyEnter); !errors.Is(err, form.ErrUnknownList) {
		t.Fatalf("expected ErrUnknownList, got %v", err)
	}
}

func TestRemove_PreservesOrderAndIgnoresOutOfRange(t *testing.T) {
	f := mustForm(t, "story_element")
	for _, tag := range []string{"a", "b", "c"} {
		_ = f.Stage("tags", "text", tag)
		_, _ = f.Add("tags")
	}

	for _, idx := range []int{-1, 3} {
		removed, err := f.Remove("tags", idx)
		if err != nil || removed {
			t.Fatalf("remove(%d) = %v, %v", idx, removed, err)
		}
	}
	if removed, _ := f.Remove("tags", 1); !removed {
		t.Fatalf("remove(1) failed")
	}
	if diff := cmp.Diff([]string{"a", "c"}, f.Snapshot().Payload().Strings("tags")); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmit_RequiredName(t *testing.T) {
	calls := 0
	f := mustForm(t, "story_element", form.WithOnSubmit(func(form.Payload) { calls++ }))
	_ = f.SetField("name", "   ")

	_, err := f.Submit()
	var verr *form.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if diff := cmp.Diff(map[string][]string{"name": {"is required"}}, verr.Fields()); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if calls != 0 {
		t.Fatalf("onSubmit must not run on invalid submit")
	}
	if !f.IsOpen() {
		t.Fatalf("invalid submit must keep the form open")
	}
}

func TestSubmit_Validator(t *testing.T) {
	f := mustForm(t, "story_element", form.WithValidator(form.ValidatorFunc(
		func(_ model.FormSchema, p form.Payload) []form.FieldIssue {
			if len(p.Strings("tags")) == 0 {
				return []form.FieldIssue{{Field: "tags", Message: "needs a tag"}}
			}
			return nil
		})))
	_ = f.SetField("name", "X")

	if _, err := f.Submit(); err == nil {
		t.Fatalf("expected validator rejection")
	}
	_ = f.Stage("tags", "text", "x")
	_, _ = f.Add("tags")
	if _, err := f.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
}

func TestCancel_ClosesWithoutSubmit(t *testing.T) {
	calls := 0
	f := mustForm(t, "story_element", form.WithOnSubmit(func(form.Payload) { calls++ }))
	_ = f.SetField("name", "X")

	if err := f.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if calls != 0 {
		t.Fatalf("cancel must not submit")
	}
	if f.IsOpen() {
		t.Fatalf("form should close itself without an open-change handler")
	}
	if err := f.SetField("name", "Y"); !errors.Is(err, form.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestReopen_KeepsStateUnlessReset(t *testing.T) {
	f := mustForm(t, "story_element")
	_ = f.SetField("name", "kept")
	_ = f.SetOpen(false)
	_ = f.SetOpen(true)
	if got := f.Snapshot().Record.Get("name"); got != "kept" {
		t.Fatalf("name after reopen = %q", got)
	}

	r := mustForm(t, "story_element", form.WithResetOnOpen(true))
	_ = r.SetField("name", "dropped")
	_ = r.Stage("tags", "text", "x")
	_, _ = r.Add("tags")
	_ = r.SetOpen(false)
	_ = r.SetOpen(true)
	snap := r.Snapshot()
	if snap.Record.Get("name") != "" || len(snap.Lists["tags"]) != 0 {
		t.Fatalf("reset on open did not clear state: %+v", snap.Record.Map())
	}
}

func TestUnknownNames(t *testing.T) {
	f := mustForm(t, "story_element")
	if err := f.SetField("nope", "x"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := f.Stage("tags", "title", "x"); !errors.Is(err, form.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if _, err := f.Add("nope"); !errors.Is(err, form.ErrUnknownList) {
		t.Fatalf("expected ErrUnknownList, got %v", err)
	}
}

func TestSnapshot_IsDetached(t *testing.T) {
	f := mustForm(t, "story_element")
	_ = f.SetField("name", "before")
	snap := f.Snapshot()
	_ = f.SetField("name", "after")

	if got := snap.Record.Get("name"); got != "before" {
		t.Fatalf("snapshot changed to %q", got)
	}
	if snap.Revision == f.Snapshot().Revision {
		t.Fatalf("revision should advance on edits")
	}
}

func TestNew_RejectsInvalidSchema(t *testing.T) {
	if _, err := form.New(model.FormSchema{}); err == nil {
		t.Fatalf("expected error for empty schema")
	}
}

func TestSubmit_ConcurrentCallsDeliverOnce(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	f := mustForm(t, "story_element",
		form.WithOnSubmit(func(form.Payload) {
			mu.Lock()
			calls++
			mu.Unlock()
		}),
		form.WithValidator(form.ValidatorFunc(func(model.FormSchema, form.Payload) []form.FieldIssue {
			time.Sleep(50 * time.Millisecond)
			return nil
		})),
	)
	_ = f.SetField("name", "X")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.Submit()
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("onSubmit ran %d times, want 1", calls)
	}
	failed := 0
	for _, err := range errs {
		if err == nil {
			continue
		}
		failed++
		if !errors.Is(err, form.ErrSubmitting) && !errors.Is(err, form.ErrClosed) {
			t.Fatalf("unexpected error from losing submit: %v", err)
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one rejected submit, got errors %v", errs)
	}
	if f.IsOpen() {
		t.Fatalf("form should be closed after the successful submit")
	}
}

func TestSubmit_RejectionAllowsLaterSubmit(t *testing.T) {
	calls := 0
	f := mustForm(t, "story_element", form.WithOnSubmit(func(form.Payload) { calls++ }))

	if _, err := f.Submit(); err == nil {
		t.Fatalf("expected blank name to be rejected")
	}
	_ = f.SetField("name", "X")
	if _, err := f.Submit(); err != nil {
		t.Fatalf("submit after rejection: %v", err)
	}
	if calls != 1 {
		t.Fatalf("onSubmit ran %d times, want 1", calls)
	}
}

func TestSubmit_StagedValuesAreNotSubmitted(t *testing.T) {
	t.Run("scalar list", func(t *testing.T) {
		f := mustForm(t, "story_element")
		_ = f.SetField("name", "X")
		if err := f.Stage("tags", "text", "pending"); err != nil {
			t.Fatalf("stage: %v", err)
		}

		payload, err := f.Submit()
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if got := payload.Strings("tags"); len(got) != 0 {
			t.Fatalf("staged tag leaked into payload: %v", got)
		}
		raw := mustJSON(t, payload)
		if !strings.Contains(raw, `"tags":[]`) || strings.Contains(raw, "pending") {
			t.Fatalf("unexpected payload %s", raw)
		}
	})

	t.Run("composite and scalar lists", func(t *testing.T) {
		f := mustForm(t, "brand_voice")
		_ = f.SetField("name", "Acme")
		_ = f.Stage("examples", "title", "Draft title")
		_ = f.Stage("examples", "content", "Draft body")
		_ = f.Stage("dos", "text", "pending do")
		_ = f.Stage("donts", "text", "pending dont")

		payload, err := f.Submit()
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		for _, list := range []string{"examples", "dos", "donts"} {
			if items := payload.Items(list); len(items) != 0 {
				t.Fatalf("%s should be empty, got %v", list, items)
			}
		}
		raw := mustJSON(t, payload)
		for _, leaked := range []string{"Draft", "pending"} {
			if strings.Contains(raw, leaked) {
				t.Fatalf("staged value %q leaked into %s", leaked, raw)
			}
		}
	})
}

func TestAddRemoveSequences_MatchSliceModel(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*7919))
			f := mustForm(t, "story_element")
			var want []string

			for step := 0; step < 60; step++ {
				if rng.IntN(3) > 0 {
					value := fmt.Sprintf("tag-%d", rng.IntN(5))
					if rng.IntN(5) == 0 {
						value = "   "
					}
					_ = f.Stage("tags", "text", value)
					res, err := f.Add("tags")
					if err != nil {
						t.Fatalf("step %d add: %v", step, err)
					}
					if trimmed := strings.TrimSpace(value); trimmed != "" {
						want = append(want, trimmed)
						if !res.Added {
							t.Fatalf("step %d: %q rejected", step, value)
						}
					} else if res.Added {
						t.Fatalf("step %d: blank tag accepted", step)
					}
				} else {
					idx := rng.IntN(len(want)+2) - 1
					removed, err := f.Remove("tags", idx)
					if err != nil {
						t.Fatalf("step %d remove: %v", step, err)
					}
					inRange := idx >= 0 && idx < len(want)
					if removed != inRange {
						t.Fatalf("step %d: remove(%d) = %v with %d items", step, idx, removed, len(want))
					}
					if inRange {
						want = append(want[:idx:idx], want[idx+1:]...)
					}
				}

				got := f.Snapshot().Payload().Strings("tags")
				if len(want) == 0 && len(got) == 0 {
					continue
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Fatalf("step %d mismatch (-want +got):\n%s", step, diff)
				}
			}
		})
	}
}
