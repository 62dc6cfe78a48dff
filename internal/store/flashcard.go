package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/studybuddy-api/internal/domain"
)

// SetSummary is a flashcard set listed without its cards.
type SetSummary struct {
	domain.FlashcardSet
	CardCount int `json:"card_count" db:"card_count"`
}

// FlashcardSetStore defines the interface for flashcard set and card persistence.
type FlashcardSetStore interface {
	// Create saves a set together with set.Flashcards.
	// IMPORTANT: This method writes several rows and MUST be run within a
	// transaction for atomicity. Use WithTx with store.RunInTransaction.
	// Returns validation errors if the set or any card is invalid and
	// ErrInvalidEntity if the owning session does not exist.
	Create(ctx context.Context, set *domain.FlashcardSet) error

	// GetByID retrieves a set with its cards ordered by card_order.
	// Returns ErrSetNotFound if the set does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FlashcardSet, error)

	// ListBySession returns the sets of a session, newest first, without
	// their cards.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]SetSummary, error)

	// UpdateTitle renames a set.
	// Returns ErrSetNotFound if the set does not exist.
	UpdateTitle(ctx context.Context, set *domain.FlashcardSet) error

	// Delete removes a set and its cards.
	// Returns ErrSetNotFound if the set does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateCardStats persists the study counters of a card.
	// Returns ErrFlashcardNotFound if the card does not exist.
	UpdateCardStats(ctx context.Context, card *domain.Flashcard) error

	// WithTx returns a FlashcardSetStore that runs its queries inside tx.
	WithTx(tx *sqlx.Tx) FlashcardSetStore
}
