package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionLifetime is how long an anonymous session stays valid after creation.
const DefaultSessionLifetime = 30 * 24 * time.Hour

// Session is an anonymous study session. Flashcard sets belong to exactly one session.
type Session struct {
	ID         uuid.UUID `json:"id"          db:"id"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"  db:"updated_at"`
	LastActive time.Time `json:"last_active" db:"last_active"`
	ExpiresAt  time.Time `json:"expires_at"  db:"expires_at"`
	IsActive   bool      `json:"is_active"   db:"is_active"`
}

// NewSession creates an active session that expires after the given lifetime.
// A non-positive lifetime falls back to DefaultSessionLifetime.
func NewSession(now time.Time, lifetime time.Duration) *Session {
	if lifetime <= 0 {
		lifetime = DefaultSessionLifetime
	}
	now = now.UTC()
	return &Session{
		ID:         uuid.New(),
		CreatedAt:  now,
		UpdatedAt:  now,
		LastActive: now,
		ExpiresAt:  now.Add(lifetime),
		IsActive:   true,
	}
}

// Validate checks if the Session has valid data.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if s.ExpiresAt.Before(s.CreatedAt) {
		return NewValidationError("expires_at", "must not precede created_at", ErrValidation)
	}
	return nil
}

// IsExpired reports whether the session expiry is at or before now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsUsable reports whether the session is active and not expired.
func (s *Session) IsUsable(now time.Time) bool {
	return s.IsActive && !s.IsExpired(now)
}

// Touch records activity on the session.
func (s *Session) Touch(now time.Time) {
	s.LastActive = now.UTC()
	s.UpdatedAt = now.UTC()
}

// Extend pushes the expiry out by the given duration, counted from now.
func (s *Session) Extend(now time.Time, by time.Duration) {
	s.ExpiresAt = now.UTC().Add(by)
	s.UpdatedAt = now.UTC()
}

// Deactivate marks the session as no longer usable.
func (s *Session) Deactivate(now time.Time) {
	s.IsActive = false
	s.UpdatedAt = now.UTC()
}
