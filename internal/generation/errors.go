package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrTooShort is the kind of ValidationError for notes below the minimum length
	ErrTooShort = errors.New("content too short")

	// ErrTooLong is the kind of ValidationError for notes above the maximum length
	ErrTooLong = errors.New("content too long")

	// ErrLowQuality is the kind of ValidationError for repetitive or fragmentary notes
	ErrLowQuality = errors.New("content quality too low")

	// ErrInsufficientCards is returned when neither the backend nor the fallback
	// produced enough usable cards
	ErrInsufficientCards = errors.New("could not generate sufficient quality flashcards")

	// ErrInvalidCardCount is returned when the requested card count is below the minimum
	ErrInvalidCardCount = errors.New("invalid card count")

	// ErrInvalidResponse is returned when a backend response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from generation backend")

	// ErrContentBlocked is returned when a backend refuses the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by generation backend safety filters")

	// ErrBackendUnavailable is returned when a backend call fails at the transport level
	// or answers with a non-success status
	ErrBackendUnavailable = errors.New("generation backend unavailable")

	// ErrTooFewCards is returned by a strategy that produced fewer usable cards than required
	ErrTooFewCards = errors.New("strategy produced too few usable cards")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// ValidationError reports why notes were rejected before generation.
// Kind is one of ErrTooShort, ErrTooLong or ErrLowQuality.
type ValidationError struct {
	Kind    error
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap exposes Kind so callers can use errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}
