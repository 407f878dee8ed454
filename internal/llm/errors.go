package llm

import (
	"fmt"
	"time"

	"github.com/jonathan/listing-extractor/internal/listing"
)

// APICallError is returned when the model could not be called or returned no text.
type APICallError struct {
	Model string
	Cause error
}

func (e *APICallError) Error() string {
	return fmt.Sprintf("gemini call to %s failed: %v", e.Model, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError is returned when the model answered but the answer was not a JSON
// object. Usage and Duration describe the call that produced Raw.
type ParseError struct {
	Raw      string
	Usage    *listing.Usage
	Duration time.Duration
	Cause    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response as JSON object: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
