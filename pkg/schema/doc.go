// Package schema loads form declarations (JSON or YAML) into model.FormSchema
// values. The bundled Brand Voice and Story Element forms are embedded under
// forms/ and exposed through Default; callers can load their own directory
// with LoadFS or layer one over the defaults with Merge.
package schema
