package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// minCapabilityTTL keeps a consumed marker around even for tokens that are
// about to expire, so clock skew cannot reopen them.
const minCapabilityTTL = time.Minute

// CapabilityStore burns admin-mode capability tokens in Redis.
// Key format: capability:used:<jti>
type CapabilityStore struct {
	client *redis.Client
}

// NewCapabilityStore creates a CapabilityStore wrapping the given Redis client.
func NewCapabilityStore(client *redis.Client) *CapabilityStore {
	return &CapabilityStore{client: client}
}

// Consume marks jti as used. The first caller wins; every later call gets
// domain.ErrCapabilityConsumed.
func (s *CapabilityStore) Consume(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl < minCapabilityTTL {
		ttl = minCapabilityTTL
	}
	ok, err := s.client.SetNX(ctx, capabilityKey(jti), "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("consume capability: %w", err)
	}
	if !ok {
		return domain.ErrCapabilityConsumed
	}
	return nil
}
