package relay

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidResponseFormat = errors.New("Invalid response format from API")
	ErrNoImageURL            = errors.New("No image URL received from API")
)

// ValidationError reports a rejected prompt; no outbound call was made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StatusError reports a non-success status from the model endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed: %d", e.StatusCode)
}

// GenerationError is the single failure outcome of a relay call that passed validation.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("Failed to generate image: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
