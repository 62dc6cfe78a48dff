package domain

import (
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// CardStatistics summarizes the study history of one flashcard.
type CardStatistics struct {
	ID           uuid.UUID  `json:"id"`
	Question     string     `json:"question"`
	TimesStudied int        `json:"times_studied"`
	SuccessRate  float64    `json:"success_rate"`
	LastStudied  *time.Time `json:"last_studied"`
}

// SetStatistics summarizes the study history of a flashcard set.
type SetStatistics struct {
	SetID              uuid.UUID        `json:"set_id"`
	TotalCards         int              `json:"total_cards"`
	StudiedCards       int              `json:"studied_cards"`
	TotalAttempts      int              `json:"total_attempts"`
	OverallSuccessRate float64          `json:"overall_success_rate"`
	Cards              []CardStatistics `json:"card_stats"`
}

// questionPreviewLength is the number of characters of a question shown in statistics.
const questionPreviewLength = 50

// ComputeStatistics aggregates the counters of the set's flashcards.
// Rates are percentages rounded to one decimal place.
func ComputeStatistics(set *FlashcardSet) *SetStatistics {
	stats := &SetStatistics{
		SetID:      set.ID,
		TotalCards: len(set.Flashcards),
		Cards:      make([]CardStatistics, 0, len(set.Flashcards)),
	}

	correct := 0
	for _, card := range set.Flashcards {
		if card.TimesStudied > 0 {
			stats.StudiedCards++
		}
		stats.TotalAttempts += card.TimesStudied
		correct += card.TimesCorrect

		stats.Cards = append(stats.Cards, CardStatistics{
			ID:           card.ID,
			Question:     previewQuestion(card.Question),
			TimesStudied: card.TimesStudied,
			SuccessRate:  roundOneDecimal(card.SuccessRate()),
			LastStudied:  card.LastStudied,
		})
	}

	if stats.TotalAttempts > 0 {
		stats.OverallSuccessRate = roundOneDecimal(float64(correct) / float64(stats.TotalAttempts) * 100)
	}
	return stats
}

func previewQuestion(q string) string {
	if utf8.RuneCountInString(q) <= questionPreviewLength {
		return q
	}
	return string([]rune(q)[:questionPreviewLength]) + "..."
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
