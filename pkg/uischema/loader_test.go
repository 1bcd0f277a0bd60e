package uischema

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestLoadFS_ParsesYAMLAndJSON(t *testing.T) {
	fsys := fstest.MapFS{
		"story.yaml": {Data: []byte(`ui:
  story_element:
    title: New Element
    fields:
      content:
        rows: 8
        placeholder: Tell it
`)},
		"brand.json": {Data: []byte(`{"ui":{"brand_voice":{"lists":{"dos":{"add_label":"Add a do"}}}}}`)},
		"forms.yaml": {Data: []byte("forms:\n  other:\n    title: Ignored\n")},
		"notes.txt":  {Data: []byte("not a schema")},
	}

	store, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"brand_voice", "story_element"}, store.IDs()); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	story, _ := store.Form("story_element")
	if story.Title != "New Element" || story.Source != "story.yaml" {
		t.Errorf("unexpected overlay %+v", story)
	}
	if got := story.Fields["content"]; got.Rows != 8 || got.Placeholder != "Tell it" {
		t.Errorf("unexpected content config %+v", got)
	}
	brand, _ := store.Form("brand_voice")
	if brand.Lists["dos"].AddLabel != "Add a do" {
		t.Errorf("unexpected brand overlay %+v", brand)
	}
}

func TestLoadFS_Errors(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"duplicate": {
			"a.yaml": {Data: []byte("ui:\n  story_element:\n    title: A\n")},
			"b.yaml": {Data: []byte("ui:\n  story_element:\n    title: B\n")},
		},
		"empty file": {
			"a.yaml": {Data: []byte("  \n")},
		},
		"bad rows": {
			"a.yaml": {Data: []byte("ui:\n  story_element:\n    fields:\n      content:\n        rows: 99\n")},
		},
		"invalid": {
			"a.yaml": {Data: []byte("ui: [unclosed\n")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFS(fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestStore_MergeAndWithout(t *testing.T) {
	base, err := LoadFS(fstest.MapFS{
		"a.yaml": {Data: []byte("ui:\n  one:\n    title: Base One\n  two:\n    title: Base Two\n")},
	})
	if err != nil {
		t.Fatalf("load base: %v", err)
	}
	extra, err := LoadFS(fstest.MapFS{
		"b.yaml": {Data: []byte("ui:\n  two:\n    title: Extra Two\n  three:\n    title: Extra Three\n")},
	})
	if err != nil {
		t.Fatalf("load extra: %v", err)
	}

	merged := base.Merge(extra)
	two, _ := merged.Form("two")
	if two.Title != "Extra Two" {
		t.Errorf("expected later store to win, got %q", two.Title)
	}

	trimmed := merged.Without("one", "missing")
	if diff := cmp.Diff([]string{"three", "two"}, trimmed.IDs()); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if _, ok := merged.Form("one"); !ok {
		t.Error("Without must not mutate the receiver")
	}
}

func TestDefault_EmbeddedOverlays(t *testing.T) {
	store, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	story, ok := store.Form("story_element")
	if !ok {
		t.Fatal("expected story element overlay")
	}
	if story.Fields["content"].Rows == 0 {
		t.Error("expected rows for story element content")
	}
	if !strings.HasSuffix(story.Source, ".yaml") {
		t.Errorf("unexpected source %q", story.Source)
	}
}
