package model

// Decorator enriches a form schema with additional metadata after it has been
// loaded, for example widget hints or derived labels.
type Decorator interface {
	Decorate(*FormSchema) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormSchema) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormSchema) error {
	return fn(form)
}

// LabelDecorator fills empty field, list and sub-field labels using labeler.
// A nil labeler falls back to DefaultLabeler.
func LabelDecorator(labeler func(string) string) Decorator {
	if labeler == nil {
		labeler = DefaultLabeler
	}
	return DecoratorFunc(func(form *FormSchema) error {
		if form == nil {
			return nil
		}
		for i := range form.Fields {
			if form.Fields[i].Label == "" {
				form.Fields[i].Label = labeler(form.Fields[i].Name)
			}
		}
		for i := range form.Lists {
			list := &form.Lists[i]
			if list.Label == "" {
				list.Label = labeler(list.Name)
			}
			for j := range list.Fields {
				if list.Fields[j].Label == "" {
					list.Fields[j].Label = labeler(list.Fields[j].Name)
				}
			}
		}
		if form.Title == "" {
			form.Title = labeler(form.ID)
		}
		return nil
	})
}
