// Package generation turns free-text study notes into question/answer
// flashcards.
//
// A Pipeline validates the notes, classifies their topic, asks an optional
// Backend (an ordered cascade of Strategy implementations talking to external
// text-generation services) for cards, and falls back to deterministic
// content heuristics whenever the backend is absent or yields too little.
// Every card leaving the pipeline has passed Normalize: questions end with a
// question mark, and both sides are at least MinFieldLength characters after
// whitespace collapsing.
package generation
