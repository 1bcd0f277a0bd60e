// Package storyelement binds the generic form engine to the Story Element
// form: a reusable anecdote, statistic or quote with free-form tags.
package storyelement

import (
	"fmt"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/schema"
)

// FormID identifies the Story Element schema.
const FormID = "story_element"

// Element types offered by the type selector.
const (
	TypeAnecdote      = "Anecdote"
	TypeStatistic     = "Statistic"
	TypeQuote         = "Quote"
	TypeCaseStudy     = "Case Study"
	TypeMetaphor      = "Metaphor"
	TypePersonalStory = "Personal Story"
)

// Payload is the typed Story Element submission. Tags are plain strings.
type Payload struct {
	Name        string   `json:"name"`
	ElementType string   `json:"element_type"`
	Content     string   `json:"content"`
	Context     string   `json:"context"`
	Tags        []string `json:"tags"`
}

// Schema returns the bundled Story Element schema.
func Schema() (model.FormSchema, error) {
	store, err := schema.Default()
	if err != nil {
		return model.FormSchema{}, err
	}
	s, ok := store.Form(FormID)
	if !ok {
		return model.FormSchema{}, fmt.Errorf("storyelement: schema %q not bundled", FormID)
	}
	return s, nil
}

// New opens a Story Element form.
func New(opts ...form.Option) (*form.Form, error) {
	s, err := Schema()
	if err != nil {
		return nil, err
	}
	return form.New(s, opts...)
}

// Decode converts a generic payload into the typed submission.
func Decode(p form.Payload) (Payload, error) {
	var out Payload
	if err := p.Decode(&out); err != nil {
		return Payload{}, fmt.Errorf("storyelement: %w", err)
	}
	return out, nil
}

// OnSubmit adapts a typed callback to form.WithOnSubmit.
func OnSubmit(fn func(Payload), onError func(error)) form.Option {
	return form.WithOnSubmit(func(p form.Payload) {
		typed, err := Decode(p)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		fn(typed)
	})
}
