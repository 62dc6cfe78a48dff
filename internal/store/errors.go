package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the session and flashcard set stores.
var (
	// ErrNotFound means a session, set or card lookup matched no row. Store
	// implementations wrap it in one of the record-specific errors below.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate means an insert collided with an existing session or set ID.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity means a write referenced a parent that does not match:
	// a set whose session is gone, or a card filed under another set.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed means a set write could not begin or commit its transaction.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrSessionNotFound: no session row has the requested ID.
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)

	// ErrSetNotFound: no flashcard set with the ID belongs to the session.
	ErrSetNotFound = fmt.Errorf("%w: flashcard set", ErrNotFound)

	// ErrFlashcardNotFound: no card with the ID belongs to the set.
	ErrFlashcardNotFound = fmt.Errorf("%w: flashcard", ErrNotFound)
)

// IsNotFoundError reports whether err is or wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is or wraps ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError records which persistence call failed and on which record kind.
type StoreError struct {
	Entity    string // "session", "flashcard_set" or "flashcard"
	Operation string // e.g. "create", "update", "delete_expired"
	Message   string
	Err       error
}

// Error implements error.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
