package service

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex   = regexp.MustCompile(`<[^>]*>`)
	unsafeRunes    = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "")
	whitespaceRegx = regexp.MustCompile(`\s+`)
)

// SanitizeNotes strips HTML tags and the characters <>"' from notes and
// collapses runs of whitespace into single spaces.
func SanitizeNotes(notes string) string {
	if notes == "" {
		return ""
	}
	cleaned := htmlTagRegex.ReplaceAllString(notes, "")
	cleaned = unsafeRunes.Replace(cleaned)
	cleaned = whitespaceRegx.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
