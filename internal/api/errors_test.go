package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studybuddy-api/internal/api/shared"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/generation"
	"github.com/phrazzld/studybuddy-api/internal/service"
	"github.com/phrazzld/studybuddy-api/internal/service/auth"
	"github.com/phrazzld/studybuddy-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCodeAndMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "notes too short",
			err:         &generation.ValidationError{Kind: generation.ErrTooShort, Message: "content must be at least 50 characters long"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Content must be at least 50 characters long",
		},
		{
			name:        "insufficient cards",
			err:         fmt.Errorf("generate: %w", generation.ErrInsufficientCards),
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Could not generate sufficient quality flashcards",
		},
		{
			name:        "invalid card count",
			err:         fmt.Errorf("%w: requested 1", generation.ErrInvalidCardCount),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid card count",
		},
		{
			name:        "expired token",
			err:         service.NewServiceError("resolve_token", "invalid session token", auth.ErrExpiredToken),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid session token",
		},
		{
			name:        "session not found",
			err:         service.NewServiceError("get_session", "session not found or expired", store.ErrSessionNotFound),
			wantStatus:  http.StatusNotFound,
			wantMessage: "Session not found or expired",
		},
		{
			name:        "set not found",
			err:         store.ErrSetNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Flashcard set not found",
		},
		{
			name:        "invalid title",
			err:         domain.NewValidationError("title", "must be between 3 and 255 characters", domain.ErrInvalidTitle),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Title must be between 3 and 255 characters",
		},
		{
			name:        "invalid extension",
			err:         service.NewServiceError("extend_session", "days", service.ErrInvalidExtension),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Days must be between 1 and 365",
		},
		{
			name:        "no cards studied",
			err:         service.ErrNoCardsStudied,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "No studied cards provided",
		},
		{
			name:        "empty body",
			err:         shared.ErrEmptyBody,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "No JSON data provided",
		},
		{
			name:        "session required",
			err:         ErrSessionRequired,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Session ID required",
		},
		{
			name:        "invalid id",
			err:         domain.NewValidationError("session_id", "has invalid format", domain.ErrInvalidID),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid ID format",
		},
		{
			name:        "unexpected",
			err:         errors.New("pq: connection to postgres://user:pw@db failed"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantStatus, MapErrorToStatusCode(tt.err))
			assert.Equal(t, tt.wantMessage, GetSafeErrorMessage(tt.err))
		})
	}

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	v := validator.New()

	err := v.Struct(ProcessNotesRequest{})
	assert.Equal(t, "Invalid Notes: required field", SanitizeValidationError(err))

	err = v.Struct(StudyRequest{CardsStudied: []StudiedCard{{CardID: "nope"}}})
	assert.Equal(t, "Invalid CardID: invalid ID format", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("something else")))
}
