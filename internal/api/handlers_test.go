package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studybuddy-api/internal/api"
	"github.com/phrazzld/studybuddy-api/internal/api/middleware"
	"github.com/phrazzld/studybuddy-api/internal/config"
	"github.com/phrazzld/studybuddy-api/internal/generation"
	"github.com/phrazzld/studybuddy-api/internal/platform/sqlstore"
	"github.com/phrazzld/studybuddy-api/internal/service"
	"github.com/phrazzld/studybuddy-api/internal/service/auth"
	"github.com/phrazzld/studybuddy-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

const pythonNotes = "Python is a programming language. It is used for web development. " +
	"Variables store data. Functions perform tasks."

type testServer struct {
	handler  http.Handler
	sessions service.SessionService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testdb.Open(t)

	tokens, err := auth.NewTokenService(config.AuthConfig{SessionTokenSecret: testSecret})
	require.NoError(t, err)
	sessions, err := service.NewSessionService(sqlstore.NewSessionStore(db, nil), tokens, 0, nil)
	require.NoError(t, err)

	pipeline, err := generation.NewPipeline(generation.PipelineConfig{}, nil, nil)
	require.NoError(t, err)
	flashcards, err := service.NewFlashcardService(db, sqlstore.NewFlashcardSetStore(db, nil), sessions, pipeline, nil)
	require.NoError(t, err)

	sessionHandler := api.NewSessionHandler(sessions, nil)
	flashcardHandler := api.NewFlashcardHandler(flashcards, sessions, nil)
	healthHandler := api.NewHealthHandler(api.HealthConfig{
		Version:  "test",
		Database: db,
		Sessions: sessions,
	}, nil)
	sessionMiddleware := middleware.NewSessionMiddleware(sessions, nil)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(nil))
	r.Get("/health", healthHandler.Health)
	r.Get("/health/detailed", healthHandler.Detailed)
	r.Route("/api", func(r chi.Router) {
		r.Post("/session", sessionHandler.CreateSession)
		r.Get("/session/{id}", sessionHandler.GetSession)
		r.Delete("/session/{id}", sessionHandler.DeleteSession)
		r.Post("/session/{id}/extend", sessionHandler.ExtendSession)

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware.Resolve)
			r.Post("/process-notes", flashcardHandler.ProcessNotes)
			r.Get("/flashcards", flashcardHandler.ListSets)
			r.Get("/flashcards/{id}", flashcardHandler.GetSet)
			r.Put("/flashcards/{id}", flashcardHandler.UpdateSet)
			r.Delete("/flashcards/{id}", flashcardHandler.DeleteSet)
			r.Post("/flashcards/{id}/study", flashcardHandler.RecordStudy)
			r.Get("/flashcards/{id}/statistics", flashcardHandler.Statistics)
		})
	})

	return &testServer{handler: r, sessions: sessions}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	TraceID string          `json:"trace_id"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	assert.NotEmpty(t, env.TraceID)
	return w.Code, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func createSession(t *testing.T, s *testServer) api.SessionResponse {
	t.Helper()
	status, env := s.do(t, http.MethodPost, "/api/session", nil, nil)
	require.Equal(t, http.StatusCreated, status)
	var session api.SessionResponse
	decodeData(t, env, &session)
	return session
}

type setPayload struct {
	ID               uuid.UUID `json:"id"`
	SessionID        uuid.UUID `json:"session_id"`
	Title            string    `json:"title"`
	GenerationMethod string    `json:"generation_method"`
	Category         string    `json:"category"`
	CardCount        int       `json:"card_count"`
	Flashcards       []struct {
		ID        uuid.UUID `json:"id"`
		Question  string    `json:"question"`
		Answer    string    `json:"answer"`
		CardOrder int       `json:"card_order"`
	} `json:"flashcards"`
}

type processNotesPayload struct {
	SessionID        uuid.UUID  `json:"session_id"`
	SessionToken     string     `json:"session_token"`
	FlashcardSet     setPayload `json:"flashcard_set"`
	GenerationMethod string     `json:"generation_method"`
}

func TestSessionEndpoints(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	session := createSession(t, s)
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.IsActive)

	path := "/api/session/" + session.ID.String()

	status, env := s.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = s.do(t, http.MethodGet, "/api/session/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid session ID format", env.Error)

	status, env = s.do(t, http.MethodGet, "/api/session/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Session not found or expired", env.Error)

	status, env = s.do(t, http.MethodPost, path+"/extend", map[string]int{"days": 7}, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Session extended by 7 days", env.Message)
	var extended api.SessionResponse
	decodeData(t, env, &extended)
	assert.NotEmpty(t, extended.Token)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), extended.ExpiresAt, time.Minute)

	status, env = s.do(t, http.MethodPost, path+"/extend", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Session extended by 30 days", env.Message)

	status, env = s.do(t, http.MethodPost, path+"/extend", map[string]int{"days": 400}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Days must be between 1 and 365", env.Error)

	status, env = s.do(t, http.MethodDelete, path, nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Session deactivated successfully", env.Message)

	status, _ = s.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodDelete, "/api/session/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestProcessNotesCreatesSession(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/process-notes", map[string]string{"notes": pythonNotes}, nil)
	require.Equal(t, http.StatusCreated, status, env.Error)
	assert.True(t, env.Success)

	var payload processNotesPayload
	decodeData(t, env, &payload)
	assert.NotEqual(t, uuid.Nil, payload.SessionID)
	assert.NotEmpty(t, payload.SessionToken)
	assert.Equal(t, "fallback", payload.GenerationMethod)
	assert.Equal(t, "programming", payload.FlashcardSet.Category)
	assert.Equal(t, "Python is a programming language....", payload.FlashcardSet.Title)

	cards := payload.FlashcardSet.Flashcards
	require.GreaterOrEqual(t, len(cards), generation.MinCards)
	assert.Equal(t, len(cards), payload.FlashcardSet.CardCount)
	assert.Equal(t, fmt.Sprintf("Generated %d flashcards successfully!", len(cards)), env.Message)
	for i, card := range cards {
		assert.Equal(t, i+1, card.CardOrder)
	}

	// The returned token names the new session.
	status, env = s.do(t, http.MethodGet, "/api/flashcards", nil,
		map[string]string{"Authorization": "Bearer " + payload.SessionToken})
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Count int `json:"count"`
	}
	decodeData(t, env, &list)
	assert.Equal(t, 1, list.Count)
}

func TestProcessNotesValidation(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	session := createSession(t, s)
	headers := map[string]string{middleware.SessionHeader: session.ID.String()}

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantError  string
	}{
		{
			name:       "no body",
			wantStatus: http.StatusBadRequest,
			wantError:  "No JSON data provided",
		},
		{
			name:       "missing notes",
			body:       map[string]string{"title": "Biology"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid Notes: required field",
		},
		{
			name:       "short notes",
			body:       map[string]string{"notes": "Too short to study."},
			wantStatus: http.StatusBadRequest,
			wantError:  "Content must be at least 50 characters long",
		},
		{
			name:       "repetitive notes",
			body:       map[string]string{"notes": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Content appears to be low quality or repetitive",
		},
		{
			name:       "card count too small",
			body:       map[string]interface{}{"notes": pythonNotes, "card_count": 1},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid CardCount: too small",
		},
		{
			name:       "card count too large",
			body:       map[string]interface{}{"notes": pythonNotes, "card_count": 50},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid card count",
		},
		{
			name:       "short title",
			body:       map[string]string{"notes": pythonNotes, "title": "ab"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Title must be between 3 and 255 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := s.do(t, http.MethodPost, "/api/process-notes", tt.body, headers)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantError, env.Error)
		})
	}

	status, env := s.do(t, http.MethodPost, "/api/process-notes",
		map[string]string{"notes": pythonNotes, "session_id": "not-a-uuid"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid ID format", env.Error)

	status, env = s.do(t, http.MethodPost, "/api/process-notes",
		map[string]string{"notes": pythonNotes, "session_id": uuid.NewString()}, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Session not found or expired", env.Error)
}

func TestFlashcardEndpoints(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	session := createSession(t, s)
	headers := map[string]string{middleware.SessionHeader: session.ID.String()}

	status, env := s.do(t, http.MethodPost, "/api/process-notes",
		map[string]interface{}{"notes": pythonNotes, "title": "Python basics", "card_count": 3}, headers)
	require.Equal(t, http.StatusCreated, status, env.Error)
	var created processNotesPayload
	decodeData(t, env, &created)
	assert.Equal(t, session.ID, created.SessionID)
	assert.Empty(t, created.SessionToken)
	assert.LessOrEqual(t, len(created.FlashcardSet.Flashcards), 3)

	setPath := "/api/flashcards/" + created.FlashcardSet.ID.String()

	t.Run("list", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/flashcards", nil, headers)
		require.Equal(t, http.StatusOK, status)
		var list struct {
			FlashcardSets []setPayload `json:"flashcard_sets"`
			Count         int          `json:"count"`
		}
		decodeData(t, env, &list)
		require.Equal(t, 1, list.Count)
		assert.Equal(t, created.FlashcardSet.ID, list.FlashcardSets[0].ID)
		assert.Equal(t, len(created.FlashcardSet.Flashcards), list.FlashcardSets[0].CardCount)
	})

	t.Run("session required", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, "/api/flashcards", nil, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Session ID required", env.Error)
	})

	t.Run("get", func(t *testing.T) {
		status, env := s.do(t, http.MethodGet, setPath, nil, headers)
		require.Equal(t, http.StatusOK, status)
		var set setPayload
		decodeData(t, env, &set)
		assert.Equal(t, "Python basics", set.Title)
		assert.Len(t, set.Flashcards, len(created.FlashcardSet.Flashcards))

		status, env = s.do(t, http.MethodGet, "/api/flashcards/bad-id", nil, headers)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid flashcard set ID format", env.Error)
	})

	t.Run("other session cannot see set", func(t *testing.T) {
		other := createSession(t, s)
		status, env := s.do(t, http.MethodGet, setPath, nil,
			map[string]string{middleware.SessionHeader: other.ID.String()})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Flashcard set not found", env.Error)
	})

	t.Run("update title", func(t *testing.T) {
		status, env := s.do(t, http.MethodPut, setPath,
			map[string]string{"title": "Python fundamentals", "session_id": session.ID.String()}, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Title updated successfully", env.Message)
		var set setPayload
		decodeData(t, env, &set)
		assert.Equal(t, "Python fundamentals", set.Title)

		status, env = s.do(t, http.MethodPut, setPath, map[string]string{"title": "ab"}, headers)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Title must be between 3 and 255 characters", env.Error)

		status, env = s.do(t, http.MethodPut, setPath, map[string]string{}, headers)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid Title: required field", env.Error)
	})

	t.Run("study and statistics", func(t *testing.T) {
		cards := created.FlashcardSet.Flashcards
		require.GreaterOrEqual(t, len(cards), 2)

		status, env := s.do(t, http.MethodPost, setPath+"/study", map[string]interface{}{
			"cards_studied": []map[string]interface{}{
				{"card_id": cards[0].ID.String(), "correct": true},
				{"card_id": cards[1].ID.String(), "correct": false},
				{"card_id": uuid.NewString(), "correct": true},
			},
		}, headers)
		require.Equal(t, http.StatusOK, status, env.Error)
		assert.Equal(t, "Study session recorded successfully", env.Message)
		var study api.StudyResponse
		decodeData(t, env, &study)
		assert.Equal(t, 2, study.CardsUpdated)

		status, env = s.do(t, http.MethodPost, setPath+"/study",
			map[string]interface{}{"cards_studied": []map[string]interface{}{{"card_id": "bad"}}}, headers)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid CardID: invalid ID format", env.Error)

		status, env = s.do(t, http.MethodPost, setPath+"/study",
			map[string]interface{}{"cards_studied": []interface{}{}}, headers)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "No studied cards provided", env.Error)

		status, env = s.do(t, http.MethodGet, setPath+"/statistics", nil, headers)
		require.Equal(t, http.StatusOK, status)
		var stats struct {
			TotalCards         int     `json:"total_cards"`
			StudiedCards       int     `json:"studied_cards"`
			TotalAttempts      int     `json:"total_attempts"`
			OverallSuccessRate float64 `json:"overall_success_rate"`
			CardStats          []struct {
				SuccessRate float64 `json:"success_rate"`
			} `json:"card_stats"`
		}
		decodeData(t, env, &stats)
		assert.Equal(t, len(cards), stats.TotalCards)
		assert.Equal(t, 2, stats.StudiedCards)
		assert.Equal(t, 2, stats.TotalAttempts)
		assert.Equal(t, 50.0, stats.OverallSuccessRate)
		require.Len(t, stats.CardStats, len(cards))
		assert.Equal(t, 100.0, stats.CardStats[0].SuccessRate)
		assert.Equal(t, 0.0, stats.CardStats[1].SuccessRate)
	})

	t.Run("delete", func(t *testing.T) {
		status, env := s.do(t, http.MethodDelete, setPath, nil, headers)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Flashcard set deleted successfully", env.Message)

		status, _ = s.do(t, http.MethodGet, setPath, nil, headers)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	status, env := s.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var health api.HealthResponse
	decodeData(t, env, &health)
	assert.Equal(t, api.StatusHealthy, health.Status)
	assert.Equal(t, api.ServiceName, health.Service)
	assert.Equal(t, "test", health.Version)

	status, env = s.do(t, http.MethodGet, "/health/detailed", nil, nil)
	require.Equal(t, http.StatusOK, status)
	var detailed api.HealthResponse
	decodeData(t, env, &detailed)
	assert.Equal(t, api.StatusDegraded, detailed.Status)
	assert.Equal(t, api.StatusHealthy, detailed.Checks["database"].Status)
	assert.Equal(t, api.StatusWarning, detailed.Checks["generation_backend"].Status)
	assert.Equal(t, "Cleaned up 0 expired sessions", detailed.Checks["session_cleanup"].Message)
	assert.NotContains(t, detailed.Checks, "cache")
}

type cleanerFunc func(ctx context.Context) (int64, error)

func (f cleanerFunc) CleanupExpired(ctx context.Context) (int64, error) { return f(ctx) }

func TestDetailedHealthUnhealthyDatabase(t *testing.T) {
	t.Parallel()

	handler := api.NewHealthHandler(api.HealthConfig{
		Version:    "test",
		Database:   api.PingFunc(func(context.Context) error { return errors.New("connection refused") }),
		Cache:      api.PingFunc(func(context.Context) error { return nil }),
		Sessions:   cleanerFunc(func(context.Context) (int64, error) { return 3, nil }),
		Strategies: []string{"instruct", "gemini"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/detailed", nil)
	w := httptest.NewRecorder()
	handler.Detailed(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var env struct {
		Success bool               `json:"success"`
		Error   string             `json:"error"`
		Data    api.HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, api.StatusUnhealthy, env.Data.Status)
	assert.Equal(t, api.StatusUnhealthy, env.Data.Checks["database"].Status)
	assert.NotContains(t, env.Data.Checks["database"].Message, "refused")
	assert.Equal(t, "2 generation strategies configured", env.Data.Checks["generation_backend"].Message)
	assert.Equal(t, api.StatusHealthy, env.Data.Checks["cache"].Status)
	assert.Equal(t, "Cleaned up 3 expired sessions", env.Data.Checks["session_cleanup"].Message)
}

func TestHandlerConstructorsPanicOnNil(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { api.NewSessionHandler(nil, nil) })
	assert.Panics(t, func() { api.NewFlashcardHandler(nil, nil, nil) })
	assert.Panics(t, func() { api.NewHealthHandler(api.HealthConfig{}, nil) })
}
