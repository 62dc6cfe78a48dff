package sqlstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
	"github.com/phrazzld/studybuddy-api/internal/store"
)

// SessionStore implements the store.SessionStore interface
// on PostgreSQL or SQLite through sqlx.
type SessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSessionStore creates a SessionStore.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If log is nil, a default logger will be used.
func NewSessionStore(db store.DBTX, log *slog.Logger) *SessionStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil for SessionStore")
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionStore{
		db:     db,
		logger: log.With(slog.String("component", "session_store")),
	}
}

// Ensure SessionStore implements store.SessionStore interface
var _ store.SessionStore = (*SessionStore)(nil)

// WithTx implements store.SessionStore.WithTx
func (s *SessionStore) WithTx(tx *sqlx.Tx) store.SessionStore {
	return &SessionStore{db: tx, logger: s.logger}
}

const sessionColumns = `id, created_at, updated_at, last_active, expires_at, is_active`

// Create implements store.SessionStore.Create
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	query := s.db.Rebind(`
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.CreatedAt.UTC(),
		session.UpdatedAt.UTC(),
		session.LastActive.UTC(),
		session.ExpiresAt.UTC(),
		session.IsActive,
	)
	if err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return store.NewStoreError("session", "create", "insert failed", MapError(err))
	}

	log.Debug("session created", slog.String("session_id", session.ID.String()))
	return nil
}

// GetByID implements store.SessionStore.GetByID
func (s *SessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var session domain.Session
	query := s.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`)
	if err := s.db.GetContext(ctx, &session, query, id); err != nil {
		if IsNotFoundError(err) {
			log.Debug("session not found", slog.String("session_id", id.String()))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, store.NewStoreError("session", "get", "select failed", MapError(err))
	}
	normalizeSessionTimes(&session)
	return &session, nil
}

// Update implements store.SessionStore.Update
func (s *SessionStore) Update(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		UPDATE sessions
		SET updated_at = ?, last_active = ?, expires_at = ?, is_active = ?
		WHERE id = ?
	`)
	result, err := s.db.ExecContext(ctx, query,
		session.UpdatedAt.UTC(),
		session.LastActive.UTC(),
		session.ExpiresAt.UTC(),
		session.IsActive,
		session.ID,
	)
	if err != nil {
		log.Error("failed to update session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return store.NewStoreError("session", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrSessionNotFound)
}

// DeleteExpired implements store.SessionStore.DeleteExpired
// Sets and cards are removed by ON DELETE CASCADE.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`)
	result, err := s.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		log.Error("failed to delete expired sessions", slog.String("error", err.Error()))
		return 0, store.NewStoreError("session", "delete_expired", "delete failed", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("session", "delete_expired", "rows affected unavailable", err)
	}
	if n > 0 {
		log.Info("expired sessions deleted", slog.Int64("count", n))
	}
	return n, nil
}

func normalizeSessionTimes(s *domain.Session) {
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	s.LastActive = s.LastActive.UTC()
	s.ExpiresAt = s.ExpiresAt.UTC()
}
