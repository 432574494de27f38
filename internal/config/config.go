package config

import (
	"fmt"
	"time"

	"github.com/ahwlsqja/channel-optin/pkg/environment"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Chain    ChainConfig
	Verifier VerifierConfig
}

type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ChainConfig points default-chain inference for bare user addresses at a
// live node. Without an RPC URL the built-in environment table is used.
type ChainConfig struct {
	RPCURL        string        `envconfig:"CHAIN_RPC_URL" default:""`
	ChainCacheTTL time.Duration `envconfig:"CHAIN_CACHE_TTL" default:"1h"`
}

type VerifierConfig struct {
	// Env selects which communicator contract proofs must be bound to
	Env               string        `envconfig:"OPTIN_ENV" default:"prod"`
	VerifyingContract string        `envconfig:"VERIFYING_CONTRACT" default:""`
	ProofTTL          time.Duration `envconfig:"PROOF_TTL" default:"24h"`
}

// ParsedEnv returns Env as an environment.Env
func (v VerifierConfig) ParsedEnv() (environment.Env, error) {
	return environment.Parse(v.Env)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := cfg.Verifier.ParsedEnv(); err != nil {
		return nil, fmt.Errorf("failed to load config: OPTIN_ENV: %w", err)
	}
	return &cfg, nil
}
