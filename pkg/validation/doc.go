// Package validation derives an OpenAPI 3 schema from a form schema and
// validates submission payloads against it with kin-openapi. Enum fields, length
// limits declared through field metadata ("max_length") and required item
// sub-fields are enforced; issues carry dotted field paths such as
// "examples.0.title" so renderers can place them inline.
package validation
