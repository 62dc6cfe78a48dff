package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/studybuddy-api/internal/api/shared"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
	"github.com/phrazzld/studybuddy-api/internal/redact"
	"github.com/phrazzld/studybuddy-api/internal/service"
)

// FlashcardHandler handles notes processing and flashcard set requests
type FlashcardHandler struct {
	flashcards service.FlashcardService
	sessions   service.SessionService
	logger     *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler
func NewFlashcardHandler(
	flashcards service.FlashcardService,
	sessions service.SessionService,
	logger *slog.Logger,
) *FlashcardHandler {
	if flashcards == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("flashcards cannot be nil for FlashcardHandler")
	}
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil for FlashcardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FlashcardHandler{
		flashcards: flashcards,
		sessions:   sessions,
		logger:     logger.With(slog.String("component", "flashcard_handler")),
	}
}

// decodeAndValidate reads a JSON body into req and validates it, writing
// the error response itself. It reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, log *slog.Logger, req interface{}) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "No JSON data provided")
			return false
		}
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}

// ProcessNotes handles POST /api/process-notes requests.
// A session is created when the request names none.
func (h *FlashcardHandler) ProcessNotes(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ProcessNotesRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}

	var token string
	sessionID, err := requestSessionID(r.Context(), req.SessionID)
	if errors.Is(err, ErrSessionRequired) {
		created, createErr := h.sessions.CreateSession(r.Context())
		if createErr != nil {
			HandleAPIError(w, r, createErr, "Failed to create session")
			return
		}
		sessionID, token = created.Session.ID, created.Token
		err = nil
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("processing notes",
		slog.String("session_id", sessionID.String()),
		slog.Int("content_length", len(req.Notes)))

	result, err := h.flashcards.CreateSet(r.Context(), service.CreateSetInput{
		SessionID: sessionID,
		Notes:     req.Notes,
		Title:     req.Title,
		CardCount: req.CardCount,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Unexpected error while processing notes")
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated, ProcessNotesResponse{
		SessionID:        sessionID,
		SessionToken:     token,
		FlashcardSet:     setToResponse(result.Set),
		GenerationMethod: result.Set.GenerationMethod,
		Strategy:         result.Strategy,
	}, fmt.Sprintf("Generated %d flashcards successfully!", len(result.Set.Flashcards)))
}

// ListSets handles GET /api/flashcards requests
func (h *FlashcardHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	sessionID, err := requestSessionID(r.Context(), "")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summaries, err := h.flashcards.ListSets(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve flashcards")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, ListSetsResponse{
		FlashcardSets: summaries,
		Count:         len(summaries),
	}, "")
}

// sessionAndSetIDs resolves the session of the request and the {id} path
// parameter, writing the error response on failure.
func sessionAndSetIDs(w http.ResponseWriter, r *http.Request, bodySessionID string) (uuid.UUID, uuid.UUID, bool) {
	setID, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid flashcard set ID format")
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, err := requestSessionID(r.Context(), bodySessionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, setID, true
}

// GetSet handles GET /api/flashcards/{id} requests
func (h *FlashcardHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	sessionID, setID, ok := sessionAndSetIDs(w, r, "")
	if !ok {
		return
	}

	set, err := h.flashcards.GetSet(r.Context(), sessionID, setID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve flashcard set")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, setToResponse(set), "")
}

// UpdateSet handles PUT /api/flashcards/{id} requests. Only the title can change.
func (h *FlashcardHandler) UpdateSet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req UpdateSetRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}
	sessionID, setID, ok := sessionAndSetIDs(w, r, req.SessionID)
	if !ok {
		return
	}

	set, err := h.flashcards.UpdateTitle(r.Context(), sessionID, setID, req.Title)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update flashcard set")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, setToResponse(set), "Title updated successfully")
}

// DeleteSet handles DELETE /api/flashcards/{id} requests
func (h *FlashcardHandler) DeleteSet(w http.ResponseWriter, r *http.Request) {
	sessionID, setID, ok := sessionAndSetIDs(w, r, "")
	if !ok {
		return
	}

	if err := h.flashcards.DeleteSet(r.Context(), sessionID, setID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete flashcard set")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, nil, "Flashcard set deleted successfully")
}

// RecordStudy handles POST /api/flashcards/{id}/study requests
func (h *FlashcardHandler) RecordStudy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req StudyRequest
	if !decodeAndValidate(w, r, log, &req) {
		return
	}
	sessionID, setID, ok := sessionAndSetIDs(w, r, req.SessionID)
	if !ok {
		return
	}

	results := make([]service.StudyResult, 0, len(req.CardsStudied))
	for _, c := range req.CardsStudied {
		cardID, err := uuid.Parse(c.CardID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
			return
		}
		results = append(results, service.StudyResult{CardID: cardID, Correct: c.Correct})
	}

	updated, err := h.flashcards.RecordStudy(r.Context(), sessionID, setID, results)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record study session")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, StudyResponse{CardsUpdated: updated},
		"Study session recorded successfully")
}

// Statistics handles GET /api/flashcards/{id}/statistics requests
func (h *FlashcardHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	sessionID, setID, ok := sessionAndSetIDs(w, r, "")
	if !ok {
		return
	}

	stats, err := h.flashcards.Statistics(r.Context(), sessionID, setID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve statistics")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, stats, "")
}
