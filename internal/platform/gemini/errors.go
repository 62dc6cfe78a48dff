package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyContent is returned when a prompt is requested for empty notes.
	ErrEmptyContent = errors.New("notes content cannot be empty")
)
