package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/store"
)

// SessionResponse describes a session. Token is only set when a new token
// was signed by the request.
type SessionResponse struct {
	ID         uuid.UUID `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsActive   bool      `json:"is_active"`
	Token      string    `json:"token,omitempty"`
}

func sessionToResponse(s *domain.Session, token string) SessionResponse {
	return SessionResponse{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive,
		ExpiresAt:  s.ExpiresAt,
		IsActive:   s.IsActive,
		Token:      token,
	}
}

// ExtendSessionRequest defines the optional payload of the session extension endpoint.
// A missing days field selects the default extension.
type ExtendSessionRequest struct {
	Days *int `json:"days"`
}

// ProcessNotesRequest defines the payload for the notes processing endpoint.
type ProcessNotesRequest struct {
	Notes     string `json:"notes"      validate:"required"`
	Title     string `json:"title"`
	SessionID string `json:"session_id"`
	CardCount int    `json:"card_count" validate:"omitempty,min=2"`
}

// ProcessNotesResponse is returned after a set was generated and stored.
type ProcessNotesResponse struct {
	SessionID        uuid.UUID               `json:"session_id"`
	SessionToken     string                  `json:"session_token,omitempty"`
	FlashcardSet     FlashcardSetResponse    `json:"flashcard_set"`
	GenerationMethod domain.GenerationMethod `json:"generation_method"`
	Strategy         string                  `json:"strategy,omitempty"`
}

// FlashcardSetResponse is a set with its ordered cards.
type FlashcardSetResponse struct {
	*domain.FlashcardSet
	CardCount int `json:"card_count"`
}

func setToResponse(set *domain.FlashcardSet) FlashcardSetResponse {
	if set.Flashcards == nil {
		set.Flashcards = []*domain.Flashcard{}
	}
	return FlashcardSetResponse{FlashcardSet: set, CardCount: len(set.Flashcards)}
}

// ListSetsResponse lists the sets of a session.
type ListSetsResponse struct {
	FlashcardSets []store.SetSummary `json:"flashcard_sets"`
	Count         int                `json:"count"`
}

// UpdateSetRequest defines the payload for renaming a set.
type UpdateSetRequest struct {
	Title     string `json:"title"      validate:"required"`
	SessionID string `json:"session_id"`
}

// StudiedCard is the outcome of one card in a study session.
type StudiedCard struct {
	CardID  string `json:"card_id" validate:"required,uuid"`
	Correct bool   `json:"correct"`
}

// StudyRequest defines the payload for recording a study session.
type StudyRequest struct {
	SessionID    string        `json:"session_id"`
	CardsStudied []StudiedCard `json:"cards_studied" validate:"dive"`
}

// StudyResponse reports how many cards were updated by a study session.
type StudyResponse struct {
	CardsUpdated int `json:"cards_updated"`
}
