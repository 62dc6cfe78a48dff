package generation

import "github.com/phrazzld/studybuddy-api/internal/domain"

const (
	// MinCards is the smallest number of usable cards a generation may return.
	MinCards = 2

	// DefaultCardCount is used when a request does not ask for a specific count.
	DefaultCardCount = 5

	// MinFieldLength is the minimum length, in characters, of a normalized question or answer.
	MinFieldLength = 10
)

// Card is a question/answer pair produced by a generator. Candidates coming
// out of strategies may have any shape; cards returned by Normalize satisfy
// the package invariants.
type Card struct {
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

// Category is the coarse topic label used to pick fallback heuristics.
type Category string

// Known content categories, in classification priority order.
const (
	CategoryProgramming Category = "programming"
	CategoryScience     Category = "science"
	CategoryHistory     Category = "history"
	CategoryGeneral     Category = "general"
)
