// Package orchestrator wires the schema store, the renderer registry and theme
// selection into one entry point: open a form by id, then render its snapshot
// with a named renderer.
package orchestrator
