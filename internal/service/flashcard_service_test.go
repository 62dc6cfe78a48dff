package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studybuddy-api/internal/domain"
	"github.com/phrazzld/studybuddy-api/internal/generation"
	"github.com/phrazzld/studybuddy-api/internal/platform/sqlstore"
	"github.com/phrazzld/studybuddy-api/internal/service"
	"github.com/phrazzld/studybuddy-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGenerator returns a fixed result or error and records its input.
type stubGenerator struct {
	result  *generation.Result
	err     error
	content string
	count   int
}

func (g *stubGenerator) Generate(_ context.Context, content string, count int) (*generation.Result, error) {
	g.content = content
	g.count = count
	return g.result, g.err
}

func aiResult() *generation.Result {
	return &generation.Result{
		Cards: []generation.Card{
			{Question: "What does mitosis produce?", Answer: "Two identical daughter cells.", Difficulty: domain.DifficultyEasy},
			{Question: "Where is ATP produced?", Answer: "Mostly in the mitochondria.", Difficulty: domain.DifficultyMedium},
			{Question: "What stores genetic information?", Answer: "DNA in the cell nucleus.", Difficulty: domain.DifficultyHard},
		},
		Method:   domain.GenerationMethodAI,
		Category: generation.CategoryScience,
		Strategy: "instruct",
	}
}

func newFlashcardService(t *testing.T, f *fixture, gen service.Generator) service.FlashcardService {
	t.Helper()
	svc, err := service.NewFlashcardService(
		f.db,
		sqlstore.NewFlashcardSetStore(f.db, nil),
		f.sessions,
		gen,
		nil,
		service.WithClock(f.clock.Now),
	)
	require.NoError(t, err)
	return svc
}

func createSet(t *testing.T, svc service.FlashcardService, sessionID uuid.UUID) *domain.FlashcardSet {
	t.Helper()
	res, err := svc.CreateSet(context.Background(), service.CreateSetInput{
		SessionID: sessionID,
		Notes:     "Cells divide by mitosis. ATP stores energy for the cell. DNA holds genes.",
	})
	require.NoError(t, err)
	return res.Set
}

func TestNewFlashcardServiceValidatesDependencies(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := service.NewFlashcardService(f.db, nil, f.sessions, &stubGenerator{}, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.NewFlashcardService(f.db, sqlstore.NewFlashcardSetStore(f.db, nil), f.sessions, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	gen := &stubGenerator{result: aiResult()}
	svc := newFlashcardService(t, f, gen)

	session, err := f.sessions.CreateSession(ctx)
	require.NoError(t, err)

	res, err := svc.CreateSet(ctx, service.CreateSetInput{
		SessionID: session.Session.ID,
		Notes:     "<p>Cells divide by   mitosis.</p> ATP stores \"energy\" for the cell.",
		CardCount: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, "Cells divide by mitosis. ATP stores energy for the cell.", gen.content)
	assert.Equal(t, 3, gen.count)
	assert.Equal(t, "instruct", res.Strategy)
	assert.Equal(t, "Cells divide by mitosis. ATP...", res.Set.Title)
	assert.Equal(t, domain.GenerationMethodAI, res.Set.GenerationMethod)
	assert.Equal(t, "science", res.Set.Category)

	stored, err := svc.GetSet(ctx, session.Session.ID, res.Set.ID)
	require.NoError(t, err)
	require.Len(t, stored.Flashcards, 3)
	for i, card := range stored.Flashcards {
		assert.Equal(t, i+1, card.CardOrder)
		assert.Equal(t, aiResult().Cards[i].Question, card.Question)
	}
}

func TestCreateSetWithPipeline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	pipeline, err := generation.NewPipeline(generation.PipelineConfig{}, nil, nil)
	require.NoError(t, err)
	svc := newFlashcardService(t, f, pipeline)

	session, err := f.sessions.CreateSession(ctx)
	require.NoError(t, err)

	res, err := svc.CreateSet(ctx, service.CreateSetInput{
		SessionID: session.Session.ID,
		Notes:     pythonNotes,
		Title:     "Python basics",
	})
	require.NoError(t, err)

	assert.Equal(t, "Python basics", res.Set.Title)
	assert.Equal(t, domain.GenerationMethodFallback, res.Set.GenerationMethod)
	assert.Equal(t, string(generation.CategoryProgramming), res.Set.Category)
	assert.GreaterOrEqual(t, len(res.Set.Flashcards), generation.MinCards)
	for _, card := range res.Set.Flashcards {
		assert.True(t, len(card.Question) >= generation.MinFieldLength)
		assert.Equal(t, byte('?'), card.Question[len(card.Question)-1])
	}
}

func TestCreateSetErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	session, err := f.sessions.CreateSession(ctx)
	require.NoError(t, err)

	tests := []struct {
		name    string
		gen     *stubGenerator
		input   service.CreateSetInput
		wantErr error
	}{
		{
			name:    "unknown session",
			gen:     &stubGenerator{result: aiResult()},
			input:   service.CreateSetInput{SessionID: uuid.New(), Notes: pythonNotes},
			wantErr: store.ErrSessionNotFound,
		},
		{
			name:    "too many cards",
			gen:     &stubGenerator{result: aiResult()},
			input:   service.CreateSetInput{SessionID: session.Session.ID, Notes: pythonNotes, CardCount: 21},
			wantErr: generation.ErrInvalidCardCount,
		},
		{
			name:    "short title",
			gen:     &stubGenerator{result: aiResult()},
			input:   service.CreateSetInput{SessionID: session.Session.ID, Notes: pythonNotes, Title: "ab"},
			wantErr: domain.ErrInvalidTitle,
		},
		{
			name:    "generation failure",
			gen:     &stubGenerator{err: generation.ErrInsufficientCards},
			input:   service.CreateSetInput{SessionID: session.Session.ID, Notes: pythonNotes},
			wantErr: generation.ErrInsufficientCards,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFlashcardService(t, f, tt.gen)
			_, err := svc.CreateSet(ctx, tt.input)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestSetOperationsAreScopedToSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newFlashcardService(t, f, &stubGenerator{result: aiResult()})

	owner, err := f.sessions.CreateSession(ctx)
	require.NoError(t, err)
	other, err := f.sessions.CreateSession(ctx)
	require.NoError(t, err)

	set := createSet(t, svc, owner.Session.ID)
	otherID := other.Session.ID

	_, err = svc.GetSet(ctx, otherID, set.ID)
	assert.ErrorIs(t, err, store.ErrSetNotFound)

	_, err = svc.UpdateTitle(ctx, otherID, set.ID, "Stolen title")
	assert.ErrorIs(t, err, store.ErrSetNotFound)

	err = svc.DeleteSet(ctx, otherID, set.ID)
	assert.ErrorIs(t, err, store.ErrSetNotFound)

	_, err = svc.Statistics(ctx, otherID, set.ID)
	assert.ErrorIs(t, err, store.ErrSetNotFound)

	_, err = svc.RecordStudy(ctx, otherID, set.ID, []service.StudyResult{{CardID: set.Flashcards[0].ID, Correct: true}})
	assert.ErrorIs(t, err, store.ErrSetNotFound)

	list, err := svc.ListSets(ctx, otherID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.GetSet(ctx, owner.Session.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrSetNotFound)

	require.NoError(t, f.sessions.DeactivateSession(ctx, owner.Session.ID))
	_, err = svc.GetSet(ctx, owner.Session.ID, set.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestListUpdateDeleteSets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newFlashcardService(t, f, &stubGenerator{result: aiResult()})

	session, err := f.sessions.CreateSession(ctx)
	require.NoError(t, err)
	sessionID := session.Session.ID

	first := createSet(t, svc, sessionID)
	f.clock.Advance(time.Minute)
	second := createSet(t, svc, sessionID)

	list, err := svc.ListSets(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, 3, list[0].CardCount)

	_, err = svc.UpdateTitle(ctx, sessionID, first.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	renamed, err := svc.UpdateTitle(ctx, sessionID, first.ID, "  Cell biology  ")
	require.NoError(t, err)
	assert.Equal(t, "Cell biology", renamed.Title)

	got, err := svc.GetSet(ctx, sessionID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cell biology", got.Title)

	require.NoError(t, svc.DeleteSet(ctx, sessionID, first.ID))
	_, err = svc.GetSet(ctx, sessionID, first.ID)
	assert.ErrorIs(t, err, store.ErrSetNotFound)

	list, err = svc.ListSets(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordStudyAndStatistics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newFlashcardService(t, f, &stubGenerator{result: aiResult()})

	session, err := f.sessions.CreateSession(ctx)
	require.NoError(t, err)
	sessionID := session.Session.ID
	set := createSet(t, svc, sessionID)

	_, err = svc.RecordStudy(ctx, sessionID, set.ID, nil)
	assert.ErrorIs(t, err, service.ErrNoCardsStudied)

	first, second := set.Flashcards[0].ID, set.Flashcards[1].ID
	updated, err := svc.RecordStudy(ctx, sessionID, set.ID, []service.StudyResult{
		{CardID: first, Correct: true},
		{CardID: second, Correct: false},
		{CardID: uuid.New(), Correct: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	updated, err = svc.RecordStudy(ctx, sessionID, set.ID, []service.StudyResult{
		{CardID: first, Correct: true},
		{CardID: second, Correct: true},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	stats, err := svc.Statistics(ctx, sessionID, set.ID)
	require.NoError(t, err)
	assert.Equal(t, set.ID, stats.SetID)
	assert.Equal(t, 3, stats.TotalCards)
	assert.Equal(t, 2, stats.StudiedCards)
	assert.Equal(t, 4, stats.TotalAttempts)
	assert.Equal(t, 75.0, stats.OverallSuccessRate)

	require.Len(t, stats.Cards, 3)
	assert.Equal(t, 100.0, stats.Cards[0].SuccessRate)
	assert.Equal(t, 50.0, stats.Cards[1].SuccessRate)
	assert.Equal(t, 0, stats.Cards[2].TimesStudied)
	assert.Nil(t, stats.Cards[2].LastStudied)
	require.NotNil(t, stats.Cards[0].LastStudied)
	assert.True(t, stats.Cards[0].LastStudied.Equal(f.clock.Now()))
}
