// Package domain contains the core business entities of the study service:
// anonymous sessions, flashcard sets generated from a single piece of notes,
// and the flashcards inside them together with their study counters.
// It is independent of any storage or delivery mechanism.
package domain
