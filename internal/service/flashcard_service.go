package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/generation"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
	"github.com/phrazzld/studybuddy-api/internal/store"
)

// DefaultMaxCardCount is the largest number of cards a set may request
// unless overridden with WithMaxCardCount.
const DefaultMaxCardCount = 20

// Generator produces flashcards from notes.
// *generation.Pipeline satisfies it.
type Generator interface {
	Generate(ctx context.Context, content string, count int) (*generation.Result, error)
}

// CreateSetInput holds the parameters of CreateSet.
type CreateSetInput struct {
	SessionID uuid.UUID
	Notes     string
	// Title is optional; an empty title is derived from the notes.
	Title string
	// CardCount is optional; zero selects the generator's default.
	CardCount int
}

// StudyResult is the outcome of studying one card.
type StudyResult struct {
	CardID  uuid.UUID
	Correct bool
}

// CreateSetResult is a stored set together with generation metadata.
type CreateSetResult struct {
	Set      *domain.FlashcardSet
	Strategy string
	Dropped  int
}

// FlashcardService provides flashcard set operations. Every operation
// requires an active session and a set owned by it; anything else is
// reported as not found.
type FlashcardService interface {
	// CreateSet sanitizes the notes, generates cards and stores them as a new set.
	CreateSet(ctx context.Context, input CreateSetInput) (*CreateSetResult, error)

	// GetSet returns a set with its cards in order.
	GetSet(ctx context.Context, sessionID, setID uuid.UUID) (*domain.FlashcardSet, error)

	// ListSets returns the session's sets, newest first, without cards.
	ListSets(ctx context.Context, sessionID uuid.UUID) ([]store.SetSummary, error)

	// UpdateTitle renames a set.
	UpdateTitle(ctx context.Context, sessionID, setID uuid.UUID, title string) (*domain.FlashcardSet, error)

	// DeleteSet removes a set and its cards.
	DeleteSet(ctx context.Context, sessionID, setID uuid.UUID) error

	// RecordStudy applies study results to the cards of a set and returns
	// the number of cards updated. Results naming cards outside the set are ignored.
	RecordStudy(ctx context.Context, sessionID, setID uuid.UUID, results []StudyResult) (int, error)

	// Statistics summarizes the study history of a set.
	Statistics(ctx context.Context, sessionID, setID uuid.UUID) (*domain.SetStatistics, error)
}

// flashcardServiceImpl implements the FlashcardService interface
type flashcardServiceImpl struct {
	db        *sqlx.DB
	sets      store.FlashcardSetStore
	sessions  SessionService
	generator Generator
	options   options
	logger    *slog.Logger
}

// Ensure flashcardServiceImpl implements FlashcardService interface
var _ FlashcardService = (*flashcardServiceImpl)(nil)

// NewFlashcardService creates a new FlashcardService.
// It returns an error if any of the required dependencies are nil.
func NewFlashcardService(
	db *sqlx.DB,
	sets store.FlashcardSetStore,
	sessions SessionService,
	gen Generator,
	log *slog.Logger,
	opts ...Option,
) (FlashcardService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if sets == nil {
		return nil, domain.NewValidationError("sets", "cannot be nil", domain.ErrValidation)
	}
	if sessions == nil {
		return nil, domain.NewValidationError("sessions", "cannot be nil", domain.ErrValidation)
	}
	if gen == nil {
		return nil, domain.NewValidationError("generator", "cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &flashcardServiceImpl{
		db:        db,
		sets:      sets,
		sessions:  sessions,
		generator: gen,
		options:   applyOptions(opts),
		logger:    log.With(slog.String("component", "flashcard_service")),
	}, nil
}

// CreateSet implements FlashcardService.CreateSet
func (s *flashcardServiceImpl) CreateSet(ctx context.Context, input CreateSetInput) (*CreateSetResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if input.CardCount > s.options.maxCardCount {
		return nil, fmt.Errorf("%w: requested %d, maximum is %d",
			generation.ErrInvalidCardCount, input.CardCount, s.options.maxCardCount)
	}
	if input.CardCount < 0 {
		return nil, fmt.Errorf("%w: requested %d", generation.ErrInvalidCardCount, input.CardCount)
	}
	if input.Title != "" {
		if err := domain.ValidateTitle(input.Title); err != nil {
			return nil, err
		}
	}

	if _, err := s.sessions.GetSession(ctx, input.SessionID); err != nil {
		return nil, err
	}

	notes := SanitizeNotes(input.Notes)
	result, err := s.generator.Generate(ctx, notes, input.CardCount)
	if err != nil {
		return nil, err
	}

	now := s.options.now()
	set, err := domain.NewFlashcardSet(input.SessionID, input.Title, notes, result.Method, string(result.Category), now)
	if err != nil {
		return nil, err
	}
	set.Flashcards = make([]*domain.Flashcard, 0, len(result.Cards))
	for i, c := range result.Cards {
		card, err := domain.NewFlashcard(set.ID, c.Question, c.Answer, c.Difficulty, i+1, now)
		if err != nil {
			log.Error("generated card failed domain validation",
				slog.String("error", err.Error()),
				slog.Int("card_order", i+1))
			return nil, NewServiceError("create_set", "generated card is invalid", err)
		}
		set.Flashcards = append(set.Flashcards, card)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.sets.WithTx(tx).Create(ctx, set)
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, NewServiceError("create_set", "session not found", store.ErrSessionNotFound)
		}
		log.Error("failed to save flashcard set",
			slog.String("error", err.Error()),
			slog.String("session_id", input.SessionID.String()))
		return nil, NewServiceError("create_set", "failed to save flashcard set", err)
	}

	log.Info("flashcard set created",
		slog.String("set_id", set.ID.String()),
		slog.String("session_id", input.SessionID.String()),
		slog.String("generation_method", string(result.Method)),
		slog.Int("card_count", len(set.Flashcards)))

	return &CreateSetResult{Set: set, Strategy: result.Strategy, Dropped: result.Dropped}, nil
}

// ownedSet loads an active session and a set belonging to it.
func (s *flashcardServiceImpl) ownedSet(ctx context.Context, op string, sessionID, setID uuid.UUID) (*domain.FlashcardSet, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.loadSet(ctx, s.sets, op, sessionID, setID)
}

func (s *flashcardServiceImpl) loadSet(
	ctx context.Context,
	sets store.FlashcardSetStore,
	op string,
	sessionID, setID uuid.UUID,
) (*domain.FlashcardSet, error) {
	set, err := sets.GetByID(ctx, setID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError(op, "flashcard set not found", store.ErrSetNotFound)
		}
		return nil, NewServiceError(op, "failed to load flashcard set", err)
	}
	if set.SessionID != sessionID {
		logger.FromContextOrDefault(ctx, s.logger).Debug("flashcard set owned by another session",
			slog.String("set_id", setID.String()),
			slog.String("session_id", sessionID.String()))
		return nil, NewServiceError(op, "flashcard set not found", store.ErrSetNotFound)
	}
	return set, nil
}

// GetSet implements FlashcardService.GetSet
func (s *flashcardServiceImpl) GetSet(ctx context.Context, sessionID, setID uuid.UUID) (*domain.FlashcardSet, error) {
	return s.ownedSet(ctx, "get_set", sessionID, setID)
}

// ListSets implements FlashcardService.ListSets
func (s *flashcardServiceImpl) ListSets(ctx context.Context, sessionID uuid.UUID) ([]store.SetSummary, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	summaries, err := s.sets.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, NewServiceError("list_sets", "failed to list flashcard sets", err)
	}
	return summaries, nil
}

// UpdateTitle implements FlashcardService.UpdateTitle
func (s *flashcardServiceImpl) UpdateTitle(
	ctx context.Context,
	sessionID, setID uuid.UUID,
	title string,
) (*domain.FlashcardSet, error) {
	if err := domain.ValidateTitle(title); err != nil {
		return nil, err
	}

	set, err := s.ownedSet(ctx, "update_title", sessionID, setID)
	if err != nil {
		return nil, err
	}
	if err := set.Rename(title, s.options.now()); err != nil {
		return nil, err
	}
	if err := s.sets.UpdateTitle(ctx, set); err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError("update_title", "flashcard set not found", store.ErrSetNotFound)
		}
		return nil, NewServiceError("update_title", "failed to update flashcard set", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("flashcard set renamed",
		slog.String("set_id", setID.String()))
	return set, nil
}

// DeleteSet implements FlashcardService.DeleteSet
func (s *flashcardServiceImpl) DeleteSet(ctx context.Context, sessionID, setID uuid.UUID) error {
	if _, err := s.ownedSet(ctx, "delete_set", sessionID, setID); err != nil {
		return err
	}
	if err := s.sets.Delete(ctx, setID); err != nil {
		if store.IsNotFoundError(err) {
			return NewServiceError("delete_set", "flashcard set not found", store.ErrSetNotFound)
		}
		return NewServiceError("delete_set", "failed to delete flashcard set", err)
	}
	return nil
}

// RecordStudy implements FlashcardService.RecordStudy
func (s *flashcardServiceImpl) RecordStudy(
	ctx context.Context,
	sessionID, setID uuid.UUID,
	results []StudyResult,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(results) == 0 {
		return 0, NewServiceError("record_study", "no cards studied", ErrNoCardsStudied)
	}
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return 0, err
	}

	updated := 0
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		sets := s.sets.WithTx(tx)
		set, err := s.loadSet(ctx, sets, "record_study", sessionID, setID)
		if err != nil {
			return err
		}

		cards := make(map[uuid.UUID]*domain.Flashcard, len(set.Flashcards))
		for _, card := range set.Flashcards {
			cards[card.ID] = card
		}

		now := s.options.now()
		touched := make(map[uuid.UUID]struct{})
		for _, r := range results {
			card, ok := cards[r.CardID]
			if !ok {
				log.Debug("ignoring study result for card outside set",
					slog.String("card_id", r.CardID.String()),
					slog.String("set_id", setID.String()))
				continue
			}
			card.RecordAttempt(r.Correct, now)
			touched[card.ID] = struct{}{}
		}

		for id := range touched {
			if err := sets.UpdateCardStats(ctx, cards[id]); err != nil {
				return err
			}
		}
		updated = len(touched)
		return nil
	})
	if err != nil {
		var svcErr *ServiceError
		if errors.As(err, &svcErr) {
			return 0, err
		}
		log.Error("failed to record study session",
			slog.String("error", err.Error()),
			slog.String("set_id", setID.String()))
		return 0, NewServiceError("record_study", "failed to record study results", err)
	}

	log.Info("study session recorded",
		slog.String("set_id", setID.String()),
		slog.Int("cards_updated", updated))
	return updated, nil
}

// Statistics implements FlashcardService.Statistics
func (s *flashcardServiceImpl) Statistics(
	ctx context.Context,
	sessionID, setID uuid.UUID,
) (*domain.SetStatistics, error) {
	set, err := s.ownedSet(ctx, "statistics", sessionID, setID)
	if err != nil {
		return nil, err
	}
	return domain.ComputeStatistics(set), nil
}
