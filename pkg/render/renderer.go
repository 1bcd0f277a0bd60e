package render

import (
	"context"

	"github.com/goliatone/go-contentforms/pkg/form"
)

// Renderer turns a form snapshot into a byte representation (an HTML modal, a
// JSON document, ...). Renderers never touch the live form; they work from the
// detached snapshot so rendering cannot race with edits.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, snapshot form.Snapshot, options RenderOptions) ([]byte, error)
}
