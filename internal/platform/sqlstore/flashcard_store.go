package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
	"github.com/phrazzld/studybuddy-api/internal/store"
)

// FlashcardSetStore implements the store.FlashcardSetStore interface
// on PostgreSQL or SQLite through sqlx.
type FlashcardSetStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewFlashcardSetStore creates a FlashcardSetStore.
// If log is nil, a default logger will be used.
func NewFlashcardSetStore(db store.DBTX, log *slog.Logger) *FlashcardSetStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil for FlashcardSetStore")
	}
	if log == nil {
		log = slog.Default()
	}
	return &FlashcardSetStore{
		db:     db,
		logger: log.With(slog.String("component", "flashcard_set_store")),
	}
}

// Ensure FlashcardSetStore implements store.FlashcardSetStore interface
var _ store.FlashcardSetStore = (*FlashcardSetStore)(nil)

// WithTx implements store.FlashcardSetStore.WithTx
func (s *FlashcardSetStore) WithTx(tx *sqlx.Tx) store.FlashcardSetStore {
	return &FlashcardSetStore{db: tx, logger: s.logger}
}

const setColumns = `id, session_id, title, original_content, content_length, generation_method, category, created_at, updated_at`

const cardColumns = `id, set_id, question, answer, difficulty, card_order, times_studied, times_correct, last_studied, created_at, updated_at`

// Create implements store.FlashcardSetStore.Create
func (s *FlashcardSetStore) Create(ctx context.Context, set *domain.FlashcardSet) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := set.Validate(); err != nil {
		log.Warn("flashcard set validation failed during create",
			slog.String("error", err.Error()),
			slog.String("set_id", set.ID.String()))
		return err
	}
	for _, card := range set.Flashcards {
		if err := card.Validate(); err != nil {
			log.Warn("flashcard validation failed during create",
				slog.String("error", err.Error()),
				slog.String("card_id", card.ID.String()))
			return err
		}
		if card.SetID != set.ID {
			return fmt.Errorf("%w: card %s belongs to set %s", store.ErrInvalidEntity, card.ID, card.SetID)
		}
	}

	setQuery := s.db.Rebind(`
		INSERT INTO flashcard_sets (` + setColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, setQuery,
		set.ID,
		set.SessionID,
		set.Title,
		set.OriginalContent,
		set.ContentLength,
		set.GenerationMethod,
		set.Category,
		set.CreatedAt.UTC(),
		set.UpdatedAt.UTC(),
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("flashcard set references a missing session",
				slog.String("set_id", set.ID.String()),
				slog.String("session_id", set.SessionID.String()))
			return fmt.Errorf("%w: session with ID %s not found", store.ErrInvalidEntity, set.SessionID)
		}
		log.Error("failed to create flashcard set",
			slog.String("error", err.Error()),
			slog.String("set_id", set.ID.String()))
		return store.NewStoreError("flashcard_set", "create", "insert failed", MapError(err))
	}

	cardQuery := s.db.Rebind(`
		INSERT INTO flashcards (` + cardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, card := range set.Flashcards {
		_, err := s.db.ExecContext(ctx, cardQuery,
			card.ID,
			card.SetID,
			card.Question,
			card.Answer,
			card.Difficulty,
			card.CardOrder,
			card.TimesStudied,
			card.TimesCorrect,
			utcPtr(card.LastStudied),
			card.CreatedAt.UTC(),
			card.UpdatedAt.UTC(),
		)
		if err != nil {
			log.Error("failed to create flashcard",
				slog.String("error", err.Error()),
				slog.String("set_id", set.ID.String()),
				slog.String("card_id", card.ID.String()))
			return store.NewStoreError("flashcard", "create", "insert failed", MapError(err))
		}
	}

	log.Info("flashcard set created",
		slog.String("set_id", set.ID.String()),
		slog.String("session_id", set.SessionID.String()),
		slog.Int("card_count", len(set.Flashcards)))
	return nil
}

// GetByID implements store.FlashcardSetStore.GetByID
func (s *FlashcardSetStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.FlashcardSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var set domain.FlashcardSet
	query := s.db.Rebind(`SELECT ` + setColumns + ` FROM flashcard_sets WHERE id = ?`)
	if err := s.db.GetContext(ctx, &set, query, id); err != nil {
		if IsNotFoundError(err) {
			log.Debug("flashcard set not found", slog.String("set_id", id.String()))
			return nil, store.ErrSetNotFound
		}
		log.Error("failed to get flashcard set",
			slog.String("error", err.Error()),
			slog.String("set_id", id.String()))
		return nil, store.NewStoreError("flashcard_set", "get", "select failed", MapError(err))
	}

	var cards []*domain.Flashcard
	cardsQuery := s.db.Rebind(`SELECT ` + cardColumns + ` FROM flashcards WHERE set_id = ? ORDER BY card_order`)
	if err := s.db.SelectContext(ctx, &cards, cardsQuery, id); err != nil {
		log.Error("failed to get flashcards",
			slog.String("error", err.Error()),
			slog.String("set_id", id.String()))
		return nil, store.NewStoreError("flashcard", "list", "select failed", MapError(err))
	}

	set.CreatedAt = set.CreatedAt.UTC()
	set.UpdatedAt = set.UpdatedAt.UTC()
	for _, card := range cards {
		normalizeCardTimes(card)
	}
	set.Flashcards = cards
	return &set, nil
}

// ListBySession implements store.FlashcardSetStore.ListBySession
func (s *FlashcardSetStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]store.SetSummary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		SELECT s.id, s.session_id, s.title, s.original_content, s.content_length,
		       s.generation_method, s.category, s.created_at, s.updated_at,
		       (SELECT COUNT(*) FROM flashcards f WHERE f.set_id = s.id) AS card_count
		FROM flashcard_sets s
		WHERE s.session_id = ?
		ORDER BY s.created_at DESC, s.id
	`)

	summaries := []store.SetSummary{}
	if err := s.db.SelectContext(ctx, &summaries, query, sessionID); err != nil {
		log.Error("failed to list flashcard sets",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, store.NewStoreError("flashcard_set", "list", "select failed", MapError(err))
	}
	for i := range summaries {
		summaries[i].CreatedAt = summaries[i].CreatedAt.UTC()
		summaries[i].UpdatedAt = summaries[i].UpdatedAt.UTC()
	}
	return summaries, nil
}

// UpdateTitle implements store.FlashcardSetStore.UpdateTitle
func (s *FlashcardSetStore) UpdateTitle(ctx context.Context, set *domain.FlashcardSet) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateTitle(set.Title); err != nil {
		return err
	}

	query := s.db.Rebind(`UPDATE flashcard_sets SET title = ?, updated_at = ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, set.Title, set.UpdatedAt.UTC(), set.ID)
	if err != nil {
		log.Error("failed to update flashcard set title",
			slog.String("error", err.Error()),
			slog.String("set_id", set.ID.String()))
		return store.NewStoreError("flashcard_set", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrSetNotFound)
}

// Delete implements store.FlashcardSetStore.Delete
// Cards are removed by ON DELETE CASCADE.
func (s *FlashcardSetStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`DELETE FROM flashcard_sets WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete flashcard set",
			slog.String("error", err.Error()),
			slog.String("set_id", id.String()))
		return store.NewStoreError("flashcard_set", "delete", "delete failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrSetNotFound); err != nil {
		if !errors.Is(err, store.ErrSetNotFound) {
			return store.NewStoreError("flashcard_set", "delete", "rows affected unavailable", err)
		}
		return err
	}

	log.Info("flashcard set deleted", slog.String("set_id", id.String()))
	return nil
}

// UpdateCardStats implements store.FlashcardSetStore.UpdateCardStats
func (s *FlashcardSetStore) UpdateCardStats(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.db.Rebind(`
		UPDATE flashcards
		SET times_studied = ?, times_correct = ?, last_studied = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := s.db.ExecContext(ctx, query,
		card.TimesStudied,
		card.TimesCorrect,
		utcPtr(card.LastStudied),
		card.UpdatedAt.UTC(),
		card.ID,
	)
	if err != nil {
		log.Error("failed to update flashcard stats",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return store.NewStoreError("flashcard", "update", "update failed", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrFlashcardNotFound)
}

func normalizeCardTimes(c *domain.Flashcard) {
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	c.LastStudied = utcPtr(c.LastStudied)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
