package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/studybuddy-api/internal/domain"
)

// SessionStore defines the interface for session data persistence.
type SessionStore interface {
	// Create saves a new session.
	// Returns validation errors if the session data is invalid.
	Create(ctx context.Context, session *domain.Session) error

	// GetByID retrieves a session by its unique ID regardless of its state.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// Update persists the mutable fields of a session (last_active,
	// expires_at, is_active, updated_at).
	// Returns ErrSessionNotFound if the session does not exist.
	Update(ctx context.Context, session *domain.Session) error

	// DeleteExpired removes sessions whose expiry is at or before now,
	// together with their sets and cards, and returns how many sessions
	// were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// WithTx returns a SessionStore that runs its queries inside tx.
	WithTx(tx *sqlx.Tx) SessionStore
}
