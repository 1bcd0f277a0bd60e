package contentforms

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadStore_EmbeddedFormsGetWidgetHints(t *testing.T) {
	store, err := LoadStore("")
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if diff := cmp.Diff([]string{"brand_voice", "story_element"}, store.IDs()); diff != "" {
		t.Fatalf("form ids mismatch (-want +got):\n%s", diff)
	}

	story, _ := store.Form("story_element")
	elementType, ok := story.Field("element_type")
	if !ok {
		t.Fatal("element_type missing")
	}
	if got := elementType.UIHints["widget"]; got != "select" {
		t.Errorf("expected select widget hint, got %q", got)
	}
	content, _ := story.Field("content")
	if got := content.UIHints["rows"]; got != "6" {
		t.Errorf("expected embedded overlay rows, got %q", got)
	}
	tags, _ := story.List("tags")
	if got := tags.UIHints["widget"]; got != "chips" {
		t.Errorf("expected chips widget hint, got %q", got)
	}
}

func TestLoadStore_DirectoryOverridesEmbedded(t *testing.T) {
	dir := t.TempDir()
	declaration := `forms:
  story_element:
    title: Custom Story
    fields:
      - name: name
        required: true
  note:
    title: Note
    fields:
      - name: name
        required: true
      - name: body
        type: text
`
	if err := os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(declaration), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	overlay := `ui:
  note:
    fields:
      body:
        rows: 10
  brand_voice:
    fields:
      tone:
        label: Voice Tone
`
	if err := os.WriteFile(filepath.Join(dir, "ui.yaml"), []byte(overlay), 0o644); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	store, err := LoadStore(dir)
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	if diff := cmp.Diff([]string{"brand_voice", "note", "story_element"}, store.IDs()); diff != "" {
		t.Fatalf("form ids mismatch (-want +got):\n%s", diff)
	}
	story, _ := store.Form("story_element")
	if story.Title != "Custom Story" {
		t.Errorf("expected override title, got %q", story.Title)
	}
	note, _ := store.Form("note")
	body, _ := note.Field("body")
	if body.UIHints["widget"] != "textarea" || body.Label != "Body" || body.UIHints["rows"] != "10" {
		t.Errorf("expected decorated body field, got %+v", body)
	}
	brand, _ := store.Form("brand_voice")
	tone, _ := brand.Field("tone")
	if tone.Label != "Voice Tone" {
		t.Errorf("expected dir overlay on embedded form, got %q", tone.Label)
	}
	custom, _ := story.Field("name")
	if custom.UIHints["widget"] != "input" {
		t.Errorf("expected widget hint on overridden form, got %v", custom.UIHints)
	}
}

func TestLoadStore_MissingDirectory(t *testing.T) {
	if _, err := LoadStore(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestNewRegistry_RegistersBuiltins(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if !registry.Has("vanilla") || !registry.Has("tui") {
		t.Fatalf("expected vanilla and tui renderers, got %v", registry.List())
	}
}

func TestGenerateHTML_RendersModal(t *testing.T) {
	orch := NewOrchestrator()
	if orch.Store() == nil {
		t.Fatal("expected default store")
	}

	out, err := GenerateHTML(context.Background(), "brand_voice", "", WithStore(orch.Store()))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `data-form="brand_voice"`) {
		t.Errorf("expected brand voice modal, got %s", out)
	}

	if _, err := GenerateHTML(context.Background(), "brand_voice", "tui"); err == nil {
		t.Error("default registry holds only the vanilla renderer")
	}
}

func TestAssetsFS_ContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), "contentforms.css")
	if err != nil {
		t.Fatalf("read stylesheet: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty stylesheet")
	}
	if _, err := fs.Stat(EmbeddedTemplates(), "templates/modal.tmpl"); err != nil {
		t.Fatalf("expected modal template: %v", err)
	}
}
