// Package uischema loads presentation overlays and applies them to form
// schemas as a model.Decorator. Overlays change how a form looks (labels,
// placeholders, widgets, textarea rows, icons) without touching the form
// declarations that define its fields and lists.
package uischema
