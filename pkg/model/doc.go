// Package model defines the typed form schema consumed by the form engine and
// its renderers. A FormSchema lists the primary record fields (all strings),
// the auxiliary editable lists and the quick-fill configuration, including the
// canned Dataset the mock generator returns. Schemas are usually declared in
// YAML and loaded through pkg/schema, but they can be built in Go as well.
//
// List items come in two shapes: scalar items hold one string under the
// "text" sub-field, composite items hold several named sub-fields (for example
// title and content). The Flatten mode controls how a list is emitted in the
// submission payload: as ordered objects or, for scalar lists, as plain
// strings.
package model
