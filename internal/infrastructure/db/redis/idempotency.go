package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore maps a client's Idempotency-Key to the booking it created.
// Key format: idem:booking:<user_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL}
}

// Lookup returns the booking id remembered for key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, userID, key string) (string, bool, error) {
	id, err := s.client.Get(ctx, s.key(userID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return id, true, nil
}

// Remember stores the booking id for key. An existing mapping is kept.
func (s *IdempotencyStore) Remember(ctx context.Context, userID, key, bookingID string) error {
	if err := s.client.SetNX(ctx, s.key(userID, key), bookingID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency remember: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(userID, key string) string {
	return fmt.Sprintf("idem:booking:%s:%s", userID, key)
}
