package caip

import (
	"context"
	"fmt"
	"time"

	"github.com/ahwlsqja/channel-optin/pkg/environment"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StaticChainIDSource reads default chains from an environment table
type StaticChainIDSource struct {
	lookup environment.Lookup
}

// Compile-time interface compliance checks
var (
	_ ChainIDSource = (*StaticChainIDSource)(nil)
	_ ChainIDSource = (*RPCChainIDSource)(nil)
	_ ChainIDSource = (*CachedChainIDSource)(nil)
)

// NewStaticChainIDSource creates a source over lookup
func NewStaticChainIDSource(lookup environment.Lookup) *StaticChainIDSource {
	return &StaticChainIDSource{lookup: lookup}
}

// DefaultChain implements ChainIDSource
func (s *StaticChainIDSource) DefaultChain(_ context.Context, env environment.Env, role environment.Role) (Chain, error) {
	id, err := s.lookup.DefaultChain(env, role)
	if err != nil {
		return Chain{}, err
	}
	return ParseChain(id)
}

// RPCChainIDSource asks an EVM node which chain it serves (eth_chainId).
// Environments without an RPC URL are rejected.
type RPCChainIDSource struct {
	rpcURLs map[environment.Env]string
	logger  *zap.Logger
}

// NewRPCChainIDSource creates a source dialing rpcURLs per environment
func NewRPCChainIDSource(rpcURLs map[environment.Env]string, logger *zap.Logger) *RPCChainIDSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPCChainIDSource{rpcURLs: rpcURLs, logger: logger}
}

// DefaultChain implements ChainIDSource
func (s *RPCChainIDSource) DefaultChain(ctx context.Context, env environment.Env, _ environment.Role) (Chain, error) {
	url, ok := s.rpcURLs[env]
	if !ok || url == "" {
		return Chain{}, &environment.ConfigurationError{Env: env}
	}

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return Chain{}, fmt.Errorf("dial rpc: %w", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		s.logger.Error("failed to query chain id",
			zap.String("env", env.String()),
			zap.Error(err),
		)
		return Chain{}, fmt.Errorf("query chain id: %w", err)
	}

	return Chain{Namespace: NamespaceEVM, NetworkID: chainID.String()}, nil
}

const (
	// chainKeyPrefix is the Redis key prefix for cached default chains
	chainKeyPrefix = "caip:chain"

	// DefaultChainCacheTTL bounds how long a looked-up chain is reused
	DefaultChainCacheTTL = time.Hour
)

// CachedChainIDSource memoizes another source in Redis.
// Cache failures are logged and fall through to the wrapped source.
type CachedChainIDSource struct {
	next   ChainIDSource
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedChainIDSource wraps next with a Redis cache
func NewCachedChainIDSource(next ChainIDSource, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedChainIDSource {
	if ttl <= 0 {
		ttl = DefaultChainCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedChainIDSource{next: next, client: client, ttl: ttl, logger: logger}
}

// buildChainKey creates a Redis key from env and role
// Format: caip:chain:{env}:{role}
func buildChainKey(env environment.Env, role environment.Role) string {
	return fmt.Sprintf("%s:%s:%s", chainKeyPrefix, env, role)
}

// DefaultChain implements ChainIDSource
func (s *CachedChainIDSource) DefaultChain(ctx context.Context, env environment.Env, role environment.Role) (Chain, error) {
	key := buildChainKey(env, role)

	cached, err := s.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if chain, parseErr := ParseChain(cached); parseErr == nil {
			return chain, nil
		}
		s.logger.Warn("discarding malformed cached chain",
			zap.String("key", key),
			zap.String("value", cached),
		)
	case err != redis.Nil:
		s.logger.Warn("chain cache read failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	chain, err := s.next.DefaultChain(ctx, env, role)
	if err != nil {
		return Chain{}, err
	}

	if err := s.client.Set(ctx, key, chain.String(), s.ttl).Err(); err != nil {
		s.logger.Warn("chain cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return chain, nil
}
