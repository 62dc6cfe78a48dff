package gemini

// promptData represents the data passed to the prompt template
type promptData struct {
	Count   int
	Content string
}

// ResponseSchema represents the expected structure of a Gemini response
type ResponseSchema struct {
	// Cards is the array of flashcards generated from the notes
	Cards []CardSchema `json:"cards"`
}

// CardSchema represents a single flashcard in the API response
type CardSchema struct {
	// Question is the prompt side of the flashcard
	Question string `json:"question"`

	// Answer is the answer side of the flashcard
	Answer string `json:"answer"`

	// Difficulty is one of easy, medium or hard. Other values are normalized later.
	Difficulty string `json:"difficulty,omitempty"`
}
