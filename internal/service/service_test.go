package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/studybuddy-api/internal/config"
	"github.com/phrazzld/studybuddy-api/internal/platform/sqlstore"
	"github.com/phrazzld/studybuddy-api/internal/service"
	"github.com/phrazzld/studybuddy-api/internal/service/auth"
	"github.com/phrazzld/studybuddy-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

const pythonNotes = "Python is a programming language. It is used for web development. " +
	"Variables store data. Functions perform tasks."

// testClock is a settable clock shared by the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now().UTC().Truncate(time.Second)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db       *sqlx.DB
	clock    *testClock
	sessions service.SessionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)

	tokens, err := auth.NewTokenService(config.AuthConfig{SessionTokenSecret: testSecret})
	require.NoError(t, err)

	clock := newTestClock()
	sessions, err := service.NewSessionService(
		sqlstore.NewSessionStore(db, nil),
		tokens,
		30*24*time.Hour,
		nil,
		service.WithClock(clock.Now),
	)
	require.NoError(t, err)

	return &fixture{db: db, clock: clock, sessions: sessions}
}
