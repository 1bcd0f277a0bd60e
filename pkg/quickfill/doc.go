// Package quickfill provides the generators behind a form's AI quick-fill
// action. Mock reproduces the reference behaviour: a fixed delay followed by a
// deterministic canned dataset taken from the form schema. OpenAI is an
// opt-in backend that asks a chat model for a dataset matching the schema.
//
// Every dataset, canned or generated, should pass through Normalize before it
// reaches a form so list invariants hold and generated text is stripped of
// markup.
package quickfill
