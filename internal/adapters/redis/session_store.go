package redis

// Package redis provides Redis-based adapters for the ledger system.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// SessionStore is a Redis-based session store for production use.
// It handles TTL semantics automatically based on session ExpiresAt, and
// enforces per-token sequence ordering: a write carrying a Seq lower than
// the stored session's Seq is rejected, so a slow role resolution can
// never overwrite a newer sign-out or sign-in.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.SessionStore = (*SessionStore)(nil)

// saveScript writes the session only when the stored copy is absent or
// carries a sequence number at or below the incoming one. Runs atomically
// on the server so concurrent resolutions cannot interleave.
var saveScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local stored = cjson.decode(cur)
  if stored.seq and tonumber(stored.seq) > tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "session:",
	}
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.Token == "" {
		return errors.New("session token cannot be empty")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		// Session is already expired, don't save it
		return errors.New("session is expired")
	}

	key := s.prefix + sess.Token
	ok, err := saveScript.Run(ctx, s.client, []string{key}, data, sess.Seq, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	if ok == 0 {
		return ports.ErrStaleSession
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token string) (domainauth.Session, error) {
	if token == "" {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	key := s.prefix + token
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ports.ErrSessionNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Redis TTL should already have evicted this; treat a lingering
	// expired payload as missing.
	if time.Now().After(sess.ExpiresAt) {
		if deleteErr := s.Delete(ctx, token); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, ports.ErrSessionNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil // Nothing to delete
	}

	key := s.prefix + token
	return s.client.Del(ctx, key).Err()
}
