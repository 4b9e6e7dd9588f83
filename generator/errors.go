package generator

import "fmt"

// GenerationError reports a failed call to the text-generation service.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("text generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// DecodeError reports generator output that is not valid JSON after cleanup.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON format: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError reports a decoded document that breaks a plan invariant.
// Reason is meant to be shown to the requester as is.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid server structure: " + e.Reason
}
