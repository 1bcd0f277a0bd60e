// Package form implements the schema-driven editable form shared by every
// content form: a primary Record of string fields, any number of ordered
// editable lists with staging inputs, a submit/cancel exit, and the AI
// quick-fill state machine.
//
// A Form is safe for concurrent use. Every mutation replaces the whole record
// or a whole list under one lock, and callbacks (WithOnSubmit,
// WithOnOpenChange, WithOnFillChange) always run outside that lock so they may
// call back into the form.
//
// The open flag mirrors a modal's visibility. While closed, mutating
// operations return ErrClosed; state is kept unless WithResetOnOpen is set. A
// pending quick-fill keeps running when the form closes and is only cancelled
// by Dispose or a reset.
package form
