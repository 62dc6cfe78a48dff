package generation

import "strings"

var (
	programmingKeywords = []string{
		"programming", "code", "coding", "software", "python", "javascript",
		"java", "html", "css", "algorithm", "function", "variable", "array",
		"object", "class", "method", "api", "database", "framework",
	}
	scienceKeywords = []string{
		"experiment", "hypothesis", "theory", "research", "study", "analysis",
		"biology", "chemistry", "physics", "molecule", "cell", "organism",
		"equation", "formula", "reaction", "energy", "matter",
	}
	historyKeywords = []string{
		"century", "year", "war", "battle", "empire", "king", "queen",
		"revolution", "ancient", "medieval", "modern", "civilization",
		"culture", "society", "political", "economic",
	}
)

// Classify labels content with the first category whose keyword set has a
// substring match, checked in the order programming, science, history.
// Matching is case-insensitive.
func Classify(content string) Category {
	lower := strings.ToLower(content)
	switch {
	case containsAny(lower, programmingKeywords):
		return CategoryProgramming
	case containsAny(lower, scienceKeywords):
		return CategoryScience
	case containsAny(lower, historyKeywords):
		return CategoryHistory
	default:
		return CategoryGeneral
	}
}
