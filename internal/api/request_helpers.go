package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studybuddy-api/internal/api/shared"
	"github.com/phrazzld/studybuddy-api/internal/domain"
)

// getPathUUID extracts a UUID from the URL path parameters.
// It returns a domain validation error when the parameter is missing or malformed.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requestSessionID returns the session named by the request. A session
// resolved by middleware wins over the session_id of the body.
// It returns ErrSessionRequired when neither is present.
func requestSessionID(ctx context.Context, bodySessionID string) (uuid.UUID, error) {
	if session, ok := shared.GetSession(ctx); ok {
		return session.ID, nil
	}

	bodySessionID = strings.TrimSpace(bodySessionID)
	if bodySessionID == "" {
		return uuid.Nil, ErrSessionRequired
	}
	id, err := uuid.Parse(bodySessionID)
	if err != nil {
		return uuid.Nil, domain.NewValidationError("session_id", "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}
