package gotemplate

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
	"testing/fstest"
)

func TestEngine_RenderTemplateFromFS(t *testing.T) {
	engine, err := New(
		WithFS(os.DirFS("testdata")),
		WithGlobalData(map[string]any{"site": "contentforms"}),
	)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("greeting", map[string]any{"name": "  Ada ", "label": "Do's & Don'ts"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Hello Ada from contentforms (do-s-don-ts)\n"
	if got != want {
		t.Fatalf("render mismatch\nwant %q\n got %q", want, got)
	}
	if buf.String() != want {
		t.Fatalf("writer mismatch: %q", buf.String())
	}
}

func TestEngine_RenderStringWithStruct(t *testing.T) {
	engine, err := New(WithFS(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	data := struct {
		Title string `json:"title"`
	}{Title: "Brand Voice"}

	got, err := engine.Render("<h2>{{ title }}</h2>", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<h2>Brand Voice</h2>" {
		t.Fatalf("got %q", got)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine, err := New(WithFS(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if err := engine.RegisterFilter("contentforms_shout", func(in any, _ any) (any, error) {
		return strings.ToUpper(fmt.Sprint(in)) + "!", nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.RegisterFilter("contentforms_shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}

	got, err := engine.RenderString("{{ name|contentforms_shout }}", map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("got %q", got)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}

func TestNewGoTemplate_RendersTemplateFromFS(t *testing.T) {
	renderer, err := NewGoTemplate(
		WithFS(os.DirFS("testdata")),
		WithGlobalData(map[string]any{"site": "contentforms"}),
	)
	if err != nil {
		t.Fatalf("new go-template renderer: %v", err)
	}

	got, err := renderer.RenderTemplate("greeting", map[string]any{"name": " Ada ", "label": "Do's & Don'ts"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Hello Ada from contentforms (do-s-don-ts)\n"
	if got != want {
		t.Fatalf("render mismatch\nwant %q\n got %q", want, got)
	}
}

func TestNewGoTemplate_RequiresSource(t *testing.T) {
	if _, err := NewGoTemplate(); err == nil {
		t.Fatal("expected error without base dir or fs")
	}
}
