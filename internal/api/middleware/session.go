package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/studybuddy-api/internal/api/shared"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
	"github.com/phrazzld/studybuddy-api/internal/service/auth"
	"github.com/phrazzld/studybuddy-api/internal/store"
)

// SessionHeader names the session of a request by ID.
const SessionHeader = "X-Session-ID"

// SessionResolver looks up active sessions by ID or signed token.
type SessionResolver interface {
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	ResolveToken(ctx context.Context, token string) (*domain.Session, error)
}

// SessionMiddleware resolves the session named by a request.
type SessionMiddleware struct {
	sessions SessionResolver
	logger   *slog.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware with the given dependencies.
func NewSessionMiddleware(sessions SessionResolver, log *slog.Logger) *SessionMiddleware {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil for SessionMiddleware")
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionMiddleware{
		sessions: sessions,
		logger:   log.With(slog.String("component", "session_middleware")),
	}
}

// Resolve looks for an X-Session-ID header, then for an
// "Authorization: Bearer <token>" header, and stores the active session in
// the request context. Requests naming no session pass through unchanged so
// handlers can fall back to a session_id in the body.
func (m *SessionMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		var (
			session *domain.Session
			err     error
		)

		switch {
		case r.Header.Get(SessionHeader) != "":
			id, parseErr := uuid.Parse(strings.TrimSpace(r.Header.Get(SessionHeader)))
			if parseErr != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID format")
				return
			}
			session, err = m.sessions.GetSession(r.Context(), id)

		case r.Header.Get("Authorization") != "":
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
				return
			}
			session, err = m.sessions.ResolveToken(r.Context(), strings.TrimSpace(token))

		default:
			next.ServeHTTP(w, r)
			return
		}

		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Session token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid session token")
			case errors.Is(err, store.ErrNotFound):
				shared.RespondWithError(w, r, http.StatusNotFound, "Session not found or expired")
			default:
				log.Debug("session resolution failed", slog.String("path", r.URL.Path))
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to resolve session", err)
			}
			return
		}

		ctx := shared.WithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
