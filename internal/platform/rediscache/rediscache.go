// Package rediscache stores generation outcomes in Redis so identical notes
// are not sent to the inference backends twice.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/studybuddy-api/internal/generation"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an outcome stays cached when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// DefaultKeyPrefix namespaces cache keys.
const DefaultKeyPrefix = "studybuddy:generation:"

// Open connects to the Redis server at url (redis://[user:pass@]host:port/db)
// and verifies the connection.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Store implements generation.ResultStore on a Redis client.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Ensure Store implements generation.ResultStore
var _ generation.ResultStore = (*Store)(nil)

// NewStore creates a Store. A non-positive ttl selects DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if client == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("redis client cannot be nil for Store")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl, prefix: DefaultKeyPrefix}
}

// Get implements generation.ResultStore.
func (s *Store) Get(ctx context.Context, key string) (generation.Outcome, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return generation.Outcome{}, false, nil
	}
	if err != nil {
		return generation.Outcome{}, false, fmt.Errorf("redis get: %w", err)
	}

	var outcome generation.Outcome
	if err := json.Unmarshal(raw, &outcome); err != nil {
		return generation.Outcome{}, false, fmt.Errorf("decode cached outcome: %w", err)
	}
	return outcome, true, nil
}

// Set implements generation.ResultStore.
func (s *Store) Set(ctx context.Context, key string, outcome generation.Outcome) error {
	raw, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping reports whether the Redis server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
