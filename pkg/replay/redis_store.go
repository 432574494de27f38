package replay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// keyPrefix is the Redis key prefix for seen proofs
	keyPrefix = "proof"
)

// RedisStore implements Store using Redis
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// Compile-time interface compliance check
var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store; ttl <= 0 selects DefaultTTL
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// buildKey creates a Redis key from owner and digest
// Format: proof:{lowercase_owner}:{digest}
func buildKey(owner, digest string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, strings.ToLower(owner), strings.ToLower(digest))
}

// Reserve claims the digest with SETNX
func (s *RedisStore) Reserve(ctx context.Context, digest, owner string) error {
	key := buildKey(owner, digest)

	ok, err := s.client.SetNX(ctx, key, "reserved", s.ttl).Result()
	if err != nil {
		s.logger.Error("failed to reserve proof",
			zap.String("owner", owner),
			zap.String("digest", digest),
			zap.Error(err),
		)
		return fmt.Errorf("failed to reserve proof: %w", err)
	}

	if !ok {
		s.logger.Warn("proof replayed",
			zap.String("owner", owner),
			zap.String("digest", digest),
		)
		return ErrAlreadySeen
	}

	return nil
}

// MarkUsed overwrites the reservation with a used marker
func (s *RedisStore) MarkUsed(ctx context.Context, digest, owner string) error {
	if err := s.client.Set(ctx, buildKey(owner, digest), "used", s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark proof as used: %w", err)
	}
	return nil
}
