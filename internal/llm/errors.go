package llm

import (
	"errors"
	"fmt"
)

// ErrTimeout reports that the model call exceeded its deadline. Distinct from
// upstream failures so callers can surface a gateway-timeout status.
var ErrTimeout = errors.New("llm: generation timed out")

// GenerationError is a non-timeout upstream failure: the provider answered
// with an error status or the transport broke.
type GenerationError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm: generation failed with status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("llm: generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// MalformedError reports a response the model produced but we could not use.
// Raw carries the full model output for diagnostics.
type MalformedError struct {
	Raw    string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("llm: malformed model response: %s", e.Reason)
}
