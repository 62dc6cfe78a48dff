package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
	"github.com/phrazzld/studybuddy-api/internal/service/auth"
	"github.com/phrazzld/studybuddy-api/internal/store"
)

// Session extension bounds, in days.
const (
	MinExtensionDays     = 1
	MaxExtensionDays     = 365
	DefaultExtensionDays = 30
)

// SessionWithToken is a session together with a freshly signed token for it.
type SessionWithToken struct {
	Session *domain.Session
	Token   string
}

// SessionService provides session lifecycle operations.
type SessionService interface {
	// CreateSession starts a new anonymous session and signs a token for it.
	CreateSession(ctx context.Context) (*SessionWithToken, error)

	// GetSession returns an active session and records activity on it.
	// Expired sessions are deactivated on access. Missing, inactive and
	// expired sessions all yield an error wrapping store.ErrSessionNotFound.
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// ResolveToken validates a session token and returns its active session.
	ResolveToken(ctx context.Context, token string) (*domain.Session, error)

	// ExtendSession moves the expiry of an active session to now plus days
	// and signs a new token matching the new expiry.
	ExtendSession(ctx context.Context, id uuid.UUID, days int) (*SessionWithToken, error)

	// DeactivateSession marks a session inactive.
	DeactivateSession(ctx context.Context, id uuid.UUID) error

	// CleanupExpired deletes expired sessions with their sets and cards.
	CleanupExpired(ctx context.Context) (int64, error)
}

// sessionServiceImpl implements the SessionService interface
type sessionServiceImpl struct {
	sessions store.SessionStore
	tokens   auth.TokenService
	lifetime time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// Ensure sessionServiceImpl implements SessionService interface
var _ SessionService = (*sessionServiceImpl)(nil)

// NewSessionService creates a new SessionService.
// It returns an error if any of the required dependencies are nil.
func NewSessionService(
	sessions store.SessionStore,
	tokens auth.TokenService,
	lifetime time.Duration,
	log *slog.Logger,
	opts ...Option,
) (SessionService, error) {
	if sessions == nil {
		return nil, domain.NewValidationError("sessions", "cannot be nil", domain.ErrValidation)
	}
	if tokens == nil {
		return nil, domain.NewValidationError("tokens", "cannot be nil", domain.ErrValidation)
	}
	if lifetime <= 0 {
		lifetime = domain.DefaultSessionLifetime
	}
	if log == nil {
		log = slog.Default()
	}

	o := applyOptions(opts)
	return &sessionServiceImpl{
		sessions: sessions,
		tokens:   tokens,
		lifetime: lifetime,
		now:      o.now,
		logger:   log.With(slog.String("component", "session_service")),
	}, nil
}

// CreateSession implements SessionService.CreateSession
func (s *sessionServiceImpl) CreateSession(ctx context.Context) (*SessionWithToken, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session := domain.NewSession(s.now(), s.lifetime)
	if err := s.sessions.Create(ctx, session); err != nil {
		log.Error("failed to create session", slog.String("error", err.Error()))
		return nil, NewServiceError("create_session", "failed to save session", err)
	}

	token, err := s.tokens.GenerateToken(ctx, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, NewServiceError("create_session", "failed to sign session token", err)
	}

	log.Info("session created",
		slog.String("session_id", session.ID.String()),
		slog.Time("expires_at", session.ExpiresAt))
	return &SessionWithToken{Session: session, Token: token}, nil
}

// GetSession implements SessionService.GetSession
func (s *sessionServiceImpl) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError("get_session", "session not found or expired", store.ErrSessionNotFound)
		}
		log.Error("failed to load session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, NewServiceError("get_session", "failed to load session", err)
	}

	if !session.IsUsable(now) {
		if session.IsActive && session.IsExpired(now) {
			session.Deactivate(now)
			if err := s.sessions.Update(ctx, session); err != nil {
				log.Warn("failed to deactivate expired session",
					slog.String("error", err.Error()),
					slog.String("session_id", id.String()))
			} else {
				log.Info("expired session deactivated", slog.String("session_id", id.String()))
			}
		}
		return nil, NewServiceError("get_session", "session not found or expired", store.ErrSessionNotFound)
	}

	session.Touch(now)
	if err := s.sessions.Update(ctx, session); err != nil {
		log.Error("failed to record session activity",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, NewServiceError("get_session", "failed to update session", err)
	}
	return session, nil
}

// ResolveToken implements SessionService.ResolveToken
func (s *sessionServiceImpl) ResolveToken(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, NewServiceError("resolve_token", "invalid session token", err)
	}
	return s.GetSession(ctx, claims.SessionID)
}

// ExtendSession implements SessionService.ExtendSession
func (s *sessionServiceImpl) ExtendSession(ctx context.Context, id uuid.UUID, days int) (*SessionWithToken, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days < MinExtensionDays || days > MaxExtensionDays {
		return nil, NewServiceError("extend_session", "days must be between 1 and 365", ErrInvalidExtension)
	}

	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Extend(s.now(), time.Duration(days)*24*time.Hour)
	if err := s.sessions.Update(ctx, session); err != nil {
		log.Error("failed to extend session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, NewServiceError("extend_session", "failed to update session", err)
	}

	token, err := s.tokens.GenerateToken(ctx, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, NewServiceError("extend_session", "failed to sign session token", err)
	}

	log.Info("session extended",
		slog.String("session_id", id.String()),
		slog.Int("days", days),
		slog.Time("expires_at", session.ExpiresAt))
	return &SessionWithToken{Session: session, Token: token}, nil
}

// DeactivateSession implements SessionService.DeactivateSession
func (s *sessionServiceImpl) DeactivateSession(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return NewServiceError("deactivate_session", "session not found", store.ErrSessionNotFound)
		}
		return NewServiceError("deactivate_session", "failed to load session", err)
	}

	session.Deactivate(s.now())
	if err := s.sessions.Update(ctx, session); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return NewServiceError("deactivate_session", "session not found", store.ErrSessionNotFound)
		}
		log.Error("failed to deactivate session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return NewServiceError("deactivate_session", "failed to update session", err)
	}

	log.Info("session deactivated", slog.String("session_id", id.String()))
	return nil
}

// CleanupExpired implements SessionService.CleanupExpired
func (s *sessionServiceImpl) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, NewServiceError("cleanup_sessions", "failed to delete expired sessions", err)
	}
	return n, nil
}
