// Package brandvoice binds the generic form engine to the Brand Voice form:
// a name, description, tone, style guidelines, preferred model, a list of
// example passages and the do's and don'ts of the voice.
package brandvoice

import (
	"fmt"

	"github.com/goliatone/go-contentforms/pkg/form"
	"github.com/goliatone/go-contentforms/pkg/model"
	"github.com/goliatone/go-contentforms/pkg/schema"
)

// FormID identifies the Brand Voice schema.
const FormID = "brand_voice"

// Example is one sample passage written in the voice.
type Example struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Rule is a single do or don't.
type Rule struct {
	Text string `json:"text"`
}

// Payload is the typed Brand Voice submission.
type Payload struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Tone            string    `json:"tone"`
	StyleGuidelines string    `json:"style_guidelines"`
	PreferredModel  string    `json:"preferred_model"`
	Examples        []Example `json:"examples"`
	Dos             []Rule    `json:"dos"`
	Donts           []Rule    `json:"donts"`
}

// Schema returns the bundled Brand Voice schema.
func Schema() (model.FormSchema, error) {
	store, err := schema.Default()
	if err != nil {
		return model.FormSchema{}, err
	}
	s, ok := store.Form(FormID)
	if !ok {
		return model.FormSchema{}, fmt.Errorf("brandvoice: schema %q not bundled", FormID)
	}
	return s, nil
}

// New opens a Brand Voice form.
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
		return Payload{}, fmt.Errorf("brandvoice: %w", err)
	}
	return out, nil
}

// OnSubmit adapts a typed callback to form.WithOnSubmit. Payloads that fail
// to decode are passed to onError when it is set.
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
