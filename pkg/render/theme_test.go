package render_test

import (
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-contentforms/pkg/render"
)

func acmeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456", "radius": "4px"},
		Templates: map[string]string{
			"forms.input": "themes/acme/input.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files:  map[string]string{"stylesheet": "theme.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
				Assets: theme.Assets{Files: map[string]string{"stylesheet": "theme.dark.css"}},
			},
		},
	}
}

func TestThemeConfig_MergesVariant(t *testing.T) {
	selector, err := render.NewStaticSelector("", "", acmeManifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	selection, err := selector.Select("acme", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	cfg := render.ThemeConfig(selection, map[string]string{"forms.textarea": "fallback.tmpl"})
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("selection = %s/%s", cfg.Theme, cfg.Variant)
	}
	if got := cfg.CSSVars["--brand"]; got != "#654321" {
		t.Fatalf("variant token not applied: %s", got)
	}
	if got := cfg.Partials["forms.textarea"]; got != "fallback.tmpl" {
		t.Fatalf("fallback partial missing: %s", got)
	}
	if got := cfg.AssetURL("stylesheet"); got != "/assets/themes/acme/theme.dark.css" {
		t.Fatalf("asset url = %s", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("unknown asset should resolve to empty, got %s", got)
	}
	if got := render.CSSVarsStyle(cfg); got != "--brand: #654321; --radius: 4px;" {
		t.Fatalf("style = %q", got)
	}
}

func TestStaticSelector_Defaults(t *testing.T) {
	selector, err := render.NewStaticSelector("", "", acmeManifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}
	selection, err := selector.Select("", "")
	if err != nil || selection.Theme != "acme" || selection.Variant != "" {
		t.Fatalf("default selection = %+v, %v", selection, err)
	}
	if _, err := selector.Select("acme", "neon"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
	if _, err := selector.Select("other", ""); err == nil {
		t.Fatalf("expected unknown theme error")
	}
	if _, err := render.NewStaticSelector("", "", acmeManifest(), acmeManifest()); err == nil {
		t.Fatalf("expected duplicate error")
	}
}
