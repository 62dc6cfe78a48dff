package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/studybuddy-api/internal/api/shared"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/generation"
	"github.com/phrazzld/studybuddy-api/internal/service"
	"github.com/phrazzld/studybuddy-api/internal/service/auth"
	"github.com/phrazzld/studybuddy-api/internal/store"
)

// ErrSessionRequired is returned when a request names no session by
// header, token or body.
var ErrSessionRequired = errors.New("session ID required")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var notesErr *generation.ValidationError

	switch {
	// Notes rejected by the content validator
	case errors.As(err, &notesErr):
		return http.StatusBadRequest

	// Generation could not reach the minimum number of cards
	case errors.Is(err, generation.ErrInsufficientCards):
		return http.StatusUnprocessableEntity

	// Session token errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, generation.ErrInvalidCardCount),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, service.ErrInvalidExtension),
		errors.Is(err, service.ErrNoCardsStudied),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, ErrSessionRequired):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var notesErr *generation.ValidationError
	if errors.As(err, &notesErr) {
		return capitalize(notesErr.Message)
	}

	switch {
	case errors.Is(err, generation.ErrInsufficientCards):
		return "Could not generate sufficient quality flashcards"

	case errors.Is(err, generation.ErrInvalidCardCount):
		return "Invalid card count"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid session token"

	case errors.Is(err, store.ErrSessionNotFound):
		return "Session not found or expired"

	case errors.Is(err, store.ErrSetNotFound):
		return "Flashcard set not found"

	case errors.Is(err, store.ErrFlashcardNotFound):
		return "Flashcard not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, domain.ErrInvalidTitle):
		return "Title must be between 3 and 255 characters"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"

	case errors.Is(err, service.ErrInvalidExtension):
		return "Days must be between 1 and 365"

	case errors.Is(err, service.ErrNoCardsStudied):
		return "No studied cards provided"

	case errors.Is(err, shared.ErrEmptyBody):
		return "No JSON data provided"

	case errors.Is(err, ErrSessionRequired):
		return "Session ID required"

	case errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. fallback replaces the
// generic message of unexpected errors when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'ProcessNotesRequest.Notes' Error:Field validation for 'Notes' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "invalid ID format"
	case "min":
		return "too small"
	case "max":
		return "too large"
	default:
		return "validation failed"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
