package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/studybuddy-api/internal/api/shared"
	"github.com/phrazzld/studybuddy-api/internal/platform/logger"
	"github.com/phrazzld/studybuddy-api/internal/redact"
	"github.com/phrazzld/studybuddy-api/internal/service"
)

// SessionHandler handles session lifecycle requests
type SessionHandler struct {
	sessions service.SessionService
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions service.SessionService, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /api/session requests
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	created, err := h.sessions.CreateSession(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create session")
		return
	}

	shared.RespondWithData(w, r, http.StatusCreated,
		sessionToResponse(created.Session, created.Token),
		"Session created successfully")
}

// GetSession handles GET /api/session/{id} requests
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	session, err := h.sessions.GetSession(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve session")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, sessionToResponse(session, ""), "")
}

// DeleteSession handles DELETE /api/session/{id} requests
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	if err := h.sessions.DeactivateSession(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete session")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, nil, "Session deactivated successfully")
}

// ExtendSession handles POST /api/session/{id}/extend requests.
// The body is optional; days defaults to 30.
func (h *SessionHandler) ExtendSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	var req ExtendSessionRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	days := service.DefaultExtensionDays
	if req.Days != nil {
		days = *req.Days
	}

	extended, err := h.sessions.ExtendSession(r.Context(), id, days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to extend session")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK,
		sessionToResponse(extended.Session, extended.Token),
		fmt.Sprintf("Session extended by %d days", days))
}
