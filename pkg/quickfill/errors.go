package quickfill

import "errors"

var (
	// ErrEmptyResponse signals the backend returned no usable content.
	ErrEmptyResponse = errors.New("quickfill: empty response")
	// ErrMissingAPIKey is returned when a remote generator has no credentials.
	ErrMissingAPIKey = errors.New("quickfill: api key is required")
)
