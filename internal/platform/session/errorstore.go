package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultErrorTTL bounds how long a stored login error survives. Matches the
// one-hour expiry the web client applies before showing a stale error.
const DefaultErrorTTL = time.Hour

// ErrNotFound is returned when no error is stored for a user (or it expired).
var ErrNotFound = errors.New("session: not found")

// LoginError is the last authentication failure recorded for a user.
type LoginError struct {
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// kvClient is the subset of the redis client the store uses.
type kvClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ErrorStore keeps the most recent login failure per user in Redis with an
// explicit TTL, so the error context survives redirects and restarts without
// client-side storage side effects.
type ErrorStore struct {
	client kvClient
	ttl    time.Duration
}

// NewErrorStore creates a store over the given redis client. A zero ttl
// falls back to DefaultErrorTTL.
func NewErrorStore(client *redis.Client, ttl time.Duration) *ErrorStore {
	return newErrorStore(client, ttl)
}

func newErrorStore(client kvClient, ttl time.Duration) *ErrorStore {
	if ttl <= 0 {
		ttl = DefaultErrorTTL
	}
	return &ErrorStore{client: client, ttl: ttl}
}

func loginErrorKey(username string) string {
	return "login_error:" + username
}

// Record stores the failure message for the user, replacing any previous one.
func (s *ErrorStore) Record(ctx context.Context, username, message string) error {
	payload, err := json.Marshal(LoginError{Message: message, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal login error: %w", err)
	}
	if err := s.client.Set(ctx, loginErrorKey(username), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("store login error: %w", err)
	}
	return nil
}

// Get returns the stored failure for the user, or ErrNotFound.
func (s *ErrorStore) Get(ctx context.Context, username string) (*LoginError, error) {
	raw, err := s.client.Get(ctx, loginErrorKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read login error: %w", err)
	}

	var le LoginError
	if err := json.Unmarshal([]byte(raw), &le); err != nil {
		return nil, fmt.Errorf("decode login error: %w", err)
	}
	return &le, nil
}

// Clear removes the stored failure for the user. Called on successful login.
func (s *ErrorStore) Clear(ctx context.Context, username string) error {
	if err := s.client.Del(ctx, loginErrorKey(username)).Err(); err != nil {
		return fmt.Errorf("clear login error: %w", err)
	}
	return nil
}
