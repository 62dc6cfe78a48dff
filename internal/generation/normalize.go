package generation

import (
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/studybuddy-api/internal/domain"
)

// NormalizeResult holds the cards that survived normalization and the number dropped.
type NormalizeResult struct {
	Cards   []Card
	Dropped int
}

// Normalize enforces the final card shape. For each candidate it collapses
// whitespace in both fields, drops the card unless both are at least
// MinFieldLength characters, appends "?" to the question when missing and
// defaults an unknown difficulty to medium. Order is preserved and the
// operation is idempotent.
func Normalize(candidates []Card) NormalizeResult {
	result := NormalizeResult{Cards: make([]Card, 0, len(candidates))}
	for _, c := range candidates {
		card, ok := normalizeCard(c)
		if !ok {
			result.Dropped++
			continue
		}
		result.Cards = append(result.Cards, card)
	}
	return result
}

func normalizeCard(c Card) (Card, bool) {
	question := collapseWhitespace(c.Question)
	answer := collapseWhitespace(c.Answer)

	if utf8.RuneCountInString(question) < MinFieldLength || utf8.RuneCountInString(answer) < MinFieldLength {
		return Card{}, false
	}
	if !strings.HasSuffix(question, "?") {
		question += "?"
	}

	difficulty := c.Difficulty
	if !difficulty.IsValid() {
		difficulty = domain.DifficultyMedium
	}

	return Card{Question: question, Answer: answer, Difficulty: difficulty}, true
}

// usable reports whether a candidate would survive Normalize.
func usable(c Card) bool {
	_, ok := normalizeCard(c)
	return ok
}
