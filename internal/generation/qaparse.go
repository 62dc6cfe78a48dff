package generation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/studybuddy-api/internal/domain"
)

var (
	questionMarker = regexp.MustCompile(`(?i)Q:\s*`)
	answerMarker   = regexp.MustCompile(`(?i)A:\s*`)
)

// qaMinLength is the length each side of a parsed pair must exceed.
const qaMinLength = 10

// ParseQA extracts cards from text laid out as "Q: ... A: ..." pairs. Text
// before the first Q: marker is ignored, segments without an A: marker are
// skipped, and a pair is kept only when both the question (without its
// trailing "?") and the answer are longer than ten characters.
func ParseQA(text string) []Card {
	segments := questionMarker.Split(text, -1)
	if len(segments) < 2 {
		return nil
	}

	var cards []Card
	for _, segment := range segments[1:] {
		parts := answerMarker.Split(segment, 2)
		if len(parts) != 2 {
			continue
		}

		question := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(parts[0]), "?"))
		answer := strings.TrimSpace(parts[1])

		if utf8.RuneCountInString(question) <= qaMinLength || utf8.RuneCountInString(answer) <= qaMinLength {
			continue
		}

		cards = append(cards, Card{
			Question:   question + "?",
			Answer:     answer,
			Difficulty: domain.DifficultyMedium,
		})
	}
	return cards
}

// ExtractQuestions is the last resort for free-form completions: each
// period-delimited segment of the generated text that contains "?" and is
// longer than twenty characters becomes a question, answered by the content
// sentence sharing the most words with it. At most limit cards are returned.
func ExtractQuestions(generated, content string, limit int) []Card {
	var cards []Card
	for _, segment := range periodSegments(generated) {
		if limit > 0 && len(cards) >= limit {
			break
		}
		if !strings.Contains(segment, "?") || utf8.RuneCountInString(segment) <= sentenceMinLength {
			continue
		}
		cards = append(cards, Card{
			Question:   segment,
			Answer:     bestMatchingSentence(segment, content),
			Difficulty: domain.DifficultyMedium,
		})
	}
	return cards
}

// bestMatchingSentence returns the content sentence with the highest word
// overlap with question, defaulting to the first segment of the content.
func bestMatchingSentence(question, content string) string {
	segments := periodSegments(content)
	best := ""
	if len(segments) > 0 {
		best = segments[0]
	}

	questionWords := strings.Fields(strings.ToLower(question))
	maxMatches := 0
	for _, s := range segments {
		if utf8.RuneCountInString(s) < sentenceMinLength {
			continue
		}
		sentenceWords := make(map[string]struct{})
		for _, w := range strings.Fields(strings.ToLower(s)) {
			sentenceWords[w] = struct{}{}
		}
		matches := 0
		for _, w := range questionWords {
			if _, ok := sentenceWords[w]; ok {
				matches++
			}
		}
		if matches > maxMatches {
			maxMatches = matches
			best = s
		}
	}
	return best
}
