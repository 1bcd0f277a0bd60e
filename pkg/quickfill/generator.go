package quickfill

import (
	"context"

	"github.com/goliatone/go-contentforms/pkg/model"
)

// Request describes a single quick-fill invocation.
type Request struct {
	FormID  string
	Subject string
	Schema  model.FormSchema
}

// Generator produces a replacement dataset for a form.
type Generator interface {
	Generate(ctx context.Context, req Request) (model.Dataset, error)
}

// GeneratorFunc adapts a function into a Generator.
type GeneratorFunc func(ctx context.Context, req Request) (model.Dataset, error)

// Generate calls the underlying function.
func (fn GeneratorFunc) Generate(ctx context.Context, req Request) (model.Dataset, error) {
	return fn(ctx, req)
}
