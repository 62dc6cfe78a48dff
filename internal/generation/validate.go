package generation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Limits bounds the accepted length of notes, in characters.
type Limits struct {
	MinLength int
	MaxLength int
}

// DefaultLimits returns the standard notes length bounds.
func DefaultLimits() Limits {
	return Limits{MinLength: 50, MaxLength: 2000}
}

// Quality thresholds applied by ValidateContent.
const (
	minDistinctChars    = 10
	repetitionMinWords  = 10
	maxWordRepetition   = 2.0
	minSubstantialParts = 2
	substantialPartLen  = 10
)

// ValidateContent trims the notes and rejects degenerate input. It returns the
// trimmed notes or a *ValidationError whose Kind is ErrTooShort, ErrTooLong or
// ErrLowQuality.
func ValidateContent(content string, limits Limits) (string, error) {
	cleaned := strings.TrimSpace(content)
	length := utf8.RuneCountInString(cleaned)

	if length < limits.MinLength {
		return "", &ValidationError{
			Kind:    ErrTooShort,
			Message: fmt.Sprintf("content must be at least %d characters long", limits.MinLength),
		}
	}
	if length > limits.MaxLength {
		return "", &ValidationError{
			Kind:    ErrTooLong,
			Message: fmt.Sprintf("content must be no more than %d characters long", limits.MaxLength),
		}
	}
	if isLowQuality(cleaned) {
		return "", &ValidationError{
			Kind:    ErrLowQuality,
			Message: "content appears to be low quality or repetitive",
		}
	}
	return cleaned, nil
}

func isLowQuality(content string) bool {
	lower := strings.ToLower(content)

	distinct := make(map[rune]struct{})
	for _, r := range lower {
		distinct[r] = struct{}{}
	}
	if len(distinct) < minDistinctChars {
		return true
	}

	words := strings.Fields(lower)
	if len(words) > repetitionMinWords {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(words))/float64(len(unique)) > maxWordRepetition {
			return true
		}
	}

	substantial := 0
	for _, part := range periodSegments(content) {
		if utf8.RuneCountInString(part) > substantialPartLen {
			substantial++
		}
	}
	return substantial < minSubstantialParts
}
