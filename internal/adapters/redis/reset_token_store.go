package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stewardly/ledger-api/internal/ports"
)

// ResetTokenStore holds single-use password-reset tokens with a TTL.
type ResetTokenStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.ResetTokenStore = (*ResetTokenStore)(nil)

// NewResetTokenStore creates a new Redis-based reset token store.
func NewResetTokenStore(client redis.UniversalClient) *ResetTokenStore {
	return &ResetTokenStore{
		client: client,
		prefix: "pwreset:",
	}
}

// Put stores the token for the identity with the given TTL.
func (s *ResetTokenStore) Put(ctx context.Context, token, identityID string, ttl time.Duration) error {
	if token == "" {
		return errors.New("reset token cannot be empty")
	}
	if ttl <= 0 {
		return errors.New("reset token TTL must be positive")
	}
	return s.client.Set(ctx, s.prefix+token, identityID, ttl).Err()
}

// Consume atomically reads and deletes the token so it cannot be replayed.
// Unknown or expired tokens map to ErrResetTokenNotFound.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ports.ErrResetTokenNotFound
	}
	identityID, err := s.client.GetDel(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrResetTokenNotFound
		}
		return "", fmt.Errorf("redis consume reset token: %w", err)
	}
	return identityID, nil
}
