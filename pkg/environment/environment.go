package environment

import (
	"errors"
	"fmt"
	"strings"
)

// Env selects which backend and contract table is consulted
type Env string

const (
	Prod    Env = "prod"
	Staging Env = "staging"
	Dev     Env = "dev"
	Local   Env = "local"
)

// Default is used when the caller does not name an environment
const Default = Prod

// Role tells the resolver which party an address belongs to.
// Bare addresses are placed on the default chain of their role.
type Role string

const (
	RoleChannel Role = "Channel"
	RoleUser    Role = "User"
)

// Endpoint is the per-chain configuration for one environment
type Endpoint struct {
	APIBaseURL           string
	CommunicatorContract string
}

// Lookup maps an environment and a CAIP-2 chain id ("eip155:1") to its endpoint.
// Implementations must be safe for concurrent reads.
type Lookup interface {
	// Endpoint returns the API base URL and communicator contract for the chain
	Endpoint(env Env, chainID string) (Endpoint, error)

	// DefaultChain returns the CAIP-2 chain id used for bare addresses of the given role
	DefaultChain(env Env, role Role) (string, error)
}

// Error definitions
var (
	ErrUnknownEnv = errors.New("unknown environment")
)

// ConfigurationError is returned when no configuration exists for an env/chain pair
type ConfigurationError struct {
	Env     Env
	ChainID string
}

func (e *ConfigurationError) Error() string {
	if e.ChainID == "" {
		return fmt.Sprintf("config not found for environment %s", e.Env)
	}
	return fmt.Sprintf("config not found for %s in environment %s", e.ChainID, e.Env)
}

// Parse converts a user supplied environment name into an Env.
// Empty input yields Default.
func Parse(s string) (Env, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Default, nil
	case "prod", "production":
		return Prod, nil
	case "staging":
		return Staging, nil
	case "dev", "development":
		return Dev, nil
	case "local":
		return Local, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEnv, s)
	}
}

func (e Env) String() string {
	return string(e)
}
