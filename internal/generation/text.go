package generation

import (
	"strings"
	"unicode/utf8"
)

// sentenceMinLength is the length a fragment must exceed to count as a sentence.
const sentenceMinLength = 20

// Sentences splits text on periods and line breaks and keeps the trimmed
// fragments longer than minLen characters, in their original order and casing.
func Sentences(text string, minLen int) []string {
	fragments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '\n' || r == '\r'
	})

	sentences := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if utf8.RuneCountInString(f) > minLen {
			sentences = append(sentences, f)
		}
	}
	return sentences
}

// periodSegments splits text on periods only and trims each segment.
func periodSegments(text string) []string {
	parts := strings.Split(text, ".")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Truncate shortens s to at most n characters, appending "..." when it cut anything.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// Excerpt returns the first n characters of s.
func Excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
