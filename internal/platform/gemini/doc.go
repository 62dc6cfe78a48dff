// Package gemini provides a generation.Strategy backed by Google's Gemini API.
//
// The strategy renders an instruction prompt asking for a fixed number of
// question/answer pairs, requests a JSON response of the form
//
//	{"cards": [{"question": "...", "answer": "...", "difficulty": "easy|medium|hard"}]}
//
// and converts it into raw generation.Card candidates. Models that ignore the
// JSON instruction and answer in "Q: ... A: ..." form are still understood.
// Responses blocked by safety filters fail the attempt so the next strategy
// is tried.
//
// The package depends on the google.golang.org/genai client library for
// authentication and transport.
package gemini
