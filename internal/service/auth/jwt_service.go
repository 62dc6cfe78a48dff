package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenService defines operations for managing session tokens.
type TokenService interface {
	// GenerateToken creates a signed token naming the session. The token
	// expires together with the session.
	GenerateToken(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType or
	// ErrInvalidToken when validation fails.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated content of a session token.
type Claims struct {
	// SessionID is the session the token was issued for.
	SessionID uuid.UUID `json:"sid,omitempty"`

	// TokenType is always "session" for tokens issued by this package.
	TokenType string `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
