package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Difficulty is the self-reported difficulty level of a flashcard.
type Difficulty string

// Known difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid reports whether d is one of the known difficulty levels.
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Flashcard is a single question/answer pair inside a set.
type Flashcard struct {
	ID           uuid.UUID  `json:"id"            db:"id"`
	SetID        uuid.UUID  `json:"set_id"        db:"set_id"`
	Question     string     `json:"question"      db:"question"`
	Answer       string     `json:"answer"        db:"answer"`
	Difficulty   Difficulty `json:"difficulty"    db:"difficulty"`
	CardOrder    int        `json:"card_order"    db:"card_order"`
	TimesStudied int        `json:"times_studied" db:"times_studied"`
	TimesCorrect int        `json:"times_correct" db:"times_correct"`
	LastStudied  *time.Time `json:"last_studied"  db:"last_studied"`
	CreatedAt    time.Time  `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"    db:"updated_at"`
}

// NewFlashcard creates a flashcard at the given position within a set.
func NewFlashcard(setID uuid.UUID, question, answer string, difficulty Difficulty, order int, now time.Time) (*Flashcard, error) {
	card := &Flashcard{
		ID:         uuid.New(),
		SetID:      setID,
		Question:   question,
		Answer:     answer,
		Difficulty: difficulty,
		CardOrder:  order,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// Validate checks if the Flashcard has valid data.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if c.SetID == uuid.Nil {
		return NewValidationError("set_id", "cannot be empty", ErrInvalidID)
	}
	if strings.TrimSpace(c.Question) == "" {
		return NewValidationError("question", "cannot be empty", ErrEmptyContent)
	}
	if strings.TrimSpace(c.Answer) == "" {
		return NewValidationError("answer", "cannot be empty", ErrEmptyContent)
	}
	if !c.Difficulty.IsValid() {
		return NewValidationError("difficulty", "must be easy, medium or hard", ErrInvalidDifficulty)
	}
	return nil
}

// RecordAttempt updates the study counters with one answer.
func (c *Flashcard) RecordAttempt(correct bool, now time.Time) {
	c.TimesStudied++
	if correct {
		c.TimesCorrect++
	}
	studied := now.UTC()
	c.LastStudied = &studied
	c.UpdatedAt = studied
}

// SuccessRate is the percentage of correct answers, 0 when the card was never studied.
func (c *Flashcard) SuccessRate() float64 {
	if c.TimesStudied == 0 {
		return 0
	}
	return float64(c.TimesCorrect) / float64(c.TimesStudied) * 100
}

// GenerationMethod records how the cards of a set were produced.
type GenerationMethod string

// Known generation methods.
const (
	GenerationMethodAI       GenerationMethod = "ai"
	GenerationMethodFallback GenerationMethod = "fallback"
)

// Title length bounds for flashcard sets.
const (
	MinTitleLength = 3
	MaxTitleLength = 255
)

// FlashcardSet groups the cards generated from one submission of notes.
type FlashcardSet struct {
	ID               uuid.UUID        `json:"id"                db:"id"`
	SessionID        uuid.UUID        `json:"session_id"        db:"session_id"`
	Title            string           `json:"title"             db:"title"`
	OriginalContent  string           `json:"original_content"  db:"original_content"`
	ContentLength    int              `json:"content_length"    db:"content_length"`
	GenerationMethod GenerationMethod `json:"generation_method" db:"generation_method"`
	Category         string           `json:"category"          db:"category"`
	CreatedAt        time.Time        `json:"created_at"        db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"        db:"updated_at"`
	Flashcards       []*Flashcard     `json:"flashcards,omitempty" db:"-"`
}

// NewFlashcardSet creates a set for the given session. An empty title is
// replaced by DefaultTitle(content).
func NewFlashcardSet(
	sessionID uuid.UUID,
	title, content string,
	method GenerationMethod,
	category string,
	now time.Time,
) (*FlashcardSet, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle(content)
	}
	set := &FlashcardSet{
		ID:               uuid.New(),
		SessionID:        sessionID,
		Title:            title,
		OriginalContent:  content,
		ContentLength:    utf8.RuneCountInString(content),
		GenerationMethod: method,
		Category:         category,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Validate checks if the FlashcardSet has valid data.
func (s *FlashcardSet) Validate() error {
	if s.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if s.SessionID == uuid.Nil {
		return NewValidationError("session_id", "cannot be empty", ErrInvalidID)
	}
	if err := ValidateTitle(s.Title); err != nil {
		return err
	}
	if strings.TrimSpace(s.OriginalContent) == "" {
		return NewValidationError("original_content", "cannot be empty", ErrEmptyContent)
	}
	switch s.GenerationMethod {
	case GenerationMethodAI, GenerationMethodFallback:
	default:
		return NewValidationError("generation_method", "must be ai or fallback", ErrValidation)
	}
	return nil
}

// Rename replaces the title after validating it.
func (s *FlashcardSet) Rename(title string, now time.Time) error {
	title = strings.TrimSpace(title)
	if err := ValidateTitle(title); err != nil {
		return err
	}
	s.Title = title
	s.UpdatedAt = now.UTC()
	return nil
}

// ValidateTitle checks the title length bounds, counted in characters.
func ValidateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < MinTitleLength || n > MaxTitleLength {
		return NewValidationError("title", "must be between 3 and 255 characters", ErrInvalidTitle)
	}
	return nil
}

// DefaultTitle derives a set title from the notes: the first five words
// followed by "...", or the first 50 characters when the notes are five
// words or fewer.
func DefaultTitle(content string) string {
	words := strings.Fields(content)
	if len(words) > 5 {
		return strings.Join(words[:5], " ") + "..."
	}
	joined := strings.Join(words, " ")
	if utf8.RuneCountInString(joined) > 50 {
		return string([]rune(joined)[:50]) + "..."
	}
	if utf8.RuneCountInString(joined) < MinTitleLength {
		return "Untitled notes"
	}
	return joined
}
