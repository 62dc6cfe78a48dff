package generation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/phrazzld/studybuddy-api/internal/domain"
)

// Fixed fallback questions.
const (
	questionLanguages      = "What programming languages or technologies are mentioned?"
	questionConcepts       = "What programming concepts are discussed?"
	questionScience        = "What scientific concept or process is described?"
	questionYears          = "What years or time periods are mentioned?"
	questionFigures        = "What historical figures are mentioned?"
	questionMainTopic      = "What is the main topic of these notes?"
	questionProcess        = "What process or method is described?"
	questionImportance     = "What important points or benefits are mentioned?"
	questionKeyInformation = "What key information is provided in the notes?"
	questionOverall        = "What do these notes cover overall?"

	// listingPrefix pads keyword listings that would otherwise be too short to keep.
	listingPrefix = "Mentioned in the notes: "

	mainTopicPreviewLength = 100
	overallPreviewLength   = 150
)

var (
	languageKeywords  = []string{"python", "javascript", "java", "c++", "html", "css", "sql", "php", "react", "flask"}
	conceptKeywords   = []string{"algorithm", "variable", "function", "loop", "array", "object", "class", "method"}
	scienceMarkers    = []string{" is ", " are ", " occurs ", " happens"}
	figureMarkers     = []string{"king", "queen", "president", "emperor", "leader"}
	definitionMarkers = []string{" is ", " are ", " means ", " refers to "}
	processMarkers    = []string{"how to", "process", "method", "steps", "procedure"}
	importanceMarkers = []string{"important", "benefit", "advantage", "essential", "crucial"}
	yearPattern       = regexp.MustCompile(`\b\d{4}\b`)
)

// GenerateFallback synthesizes up to count cards from the notes alone. It is
// deterministic and never fails: category heuristics run first, then unused
// sentences pad the result, then unused period-delimited parts longer than ten
// characters, then a single card answered by the truncated notes. Only
// candidates that would survive Normalize are counted. Notes accepted by
// ValidateContent yield at least min(count, 3) cards unless their parts repeat
// or collapse below MinFieldLength.
func GenerateFallback(content string, count int) []Card {
	if count <= 0 {
		count = DefaultCardCount
	}

	sentences := Sentences(content, sentenceMinLength)

	var seeded []Card
	switch Classify(content) {
	case CategoryProgramming:
		seeded = programmingCards(content)
	case CategoryScience:
		seeded = scienceCards(sentences)
	case CategoryHistory:
		seeded = historyCards(content, sentences)
	default:
		seeded = generalCards(content, sentences)
	}

	cards := make([]Card, 0, count)
	usedAnswers := make(map[string]struct{})
	for _, c := range seeded {
		if usable(c) {
			cards = append(cards, c)
			usedAnswers[c.Answer] = struct{}{}
		}
	}

	var parts []string
	for _, part := range periodSegments(content) {
		if utf8.RuneCountInString(part) > substantialPartLen {
			parts = append(parts, part)
		}
	}

	for _, answers := range [][]string{sentences, parts} {
		for _, s := range answers {
			if len(cards) >= count {
				break
			}
			if _, used := usedAnswers[s]; used {
				continue
			}
			c := Card{Question: questionKeyInformation, Answer: s, Difficulty: domain.DifficultyMedium}
			if usable(c) {
				cards = append(cards, c)
				usedAnswers[s] = struct{}{}
			}
		}
	}

	if len(cards) < count {
		c := Card{
			Question:   questionOverall,
			Answer:     Truncate(strings.TrimSpace(content), overallPreviewLength),
			Difficulty: domain.DifficultyEasy,
		}
		if _, used := usedAnswers[c.Answer]; !used && usable(c) {
			cards = append(cards, c)
		}
	}

	if len(cards) > count {
		cards = cards[:count]
	}
	return cards
}

func programmingCards(content string) []Card {
	lower := strings.ToLower(content)
	var cards []Card

	if found := matchedKeywords(lower, languageKeywords); len(found) > 0 {
		cards = append(cards, Card{
			Question:   questionLanguages,
			Answer:     listingAnswer(found),
			Difficulty: domain.DifficultyEasy,
		})
	}
	if found := matchedKeywords(lower, conceptKeywords); len(found) > 0 {
		cards = append(cards, Card{
			Question:   questionConcepts,
			Answer:     listingAnswer(found),
			Difficulty: domain.DifficultyMedium,
		})
	}
	return cards
}

func scienceCards(sentences []string) []Card {
	if s, ok := firstMatching(sentences, scienceMarkers); ok {
		return []Card{{Question: questionScience, Answer: s, Difficulty: domain.DifficultyMedium}}
	}
	return nil
}

func historyCards(content string, sentences []string) []Card {
	var cards []Card

	seen := make(map[string]struct{})
	var years []string
	for _, y := range yearPattern.FindAllString(content, -1) {
		if _, dup := seen[y]; dup {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	if len(years) > 0 {
		cards = append(cards, Card{Question: questionYears, Answer: listingAnswer(years), Difficulty: domain.DifficultyEasy})
	}

	if s, ok := firstMatching(sentences, figureMarkers); ok {
		cards = append(cards, Card{Question: questionFigures, Answer: s, Difficulty: domain.DifficultyMedium})
	}
	return cards
}

func generalCards(content string, sentences []string) []Card {
	mainTopic := Truncate(strings.TrimSpace(content), mainTopicPreviewLength)
	if len(sentences) > 0 {
		mainTopic = sentences[0]
	}
	cards := []Card{{Question: questionMainTopic, Answer: mainTopic, Difficulty: domain.DifficultyEasy}}

	if s, ok := firstMatching(sentences, definitionMarkers); ok {
		words := strings.Fields(s)
		if len(words) > 5 {
			words = words[:5]
		}
		cards = append(cards, Card{
			Question:   "What is " + strings.ToLower(strings.Join(words, " ")) + "?",
			Answer:     s,
			Difficulty: domain.DifficultyMedium,
		})
	}
	if s, ok := firstMatching(sentences, processMarkers); ok {
		cards = append(cards, Card{Question: questionProcess, Answer: s, Difficulty: domain.DifficultyMedium})
	}
	if s, ok := firstMatching(sentences, importanceMarkers); ok {
		cards = append(cards, Card{Question: questionImportance, Answer: s, Difficulty: domain.DifficultyMedium})
	}
	return cards
}

// firstMatching returns the first sentence whose lowercased form contains any marker.
func firstMatching(sentences []string, markers []string) (string, bool) {
	for _, s := range sentences {
		if containsAny(strings.ToLower(s), markers) {
			return s, true
		}
	}
	return "", false
}

func matchedKeywords(lower string, keywords []string) []string {
	var found []string
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			found = append(found, titleWord(k))
		}
	}
	return found
}

func listingAnswer(items []string) string {
	answer := strings.Join(items, ", ")
	if utf8.RuneCountInString(answer) < MinFieldLength {
		return listingPrefix + answer
	}
	return answer
}

func titleWord(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}
