package uischema

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed ui/*.yaml
var embeddedOverlays embed.FS

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// EmbeddedFS returns the bundled overlays for the built-in forms.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedOverlays, "ui")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Default returns the store built from the embedded overlays.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = LoadFS(EmbeddedFS())
	})
	return defaultStore, defaultErr
}
