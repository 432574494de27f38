package caip

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahwlsqja/channel-optin/pkg/environment"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Error definitions
var (
	ErrMalformed       = errors.New("malformed chain address")
	ErrNamespaceChange = errors.New("namespace does not match the default chain")
)

// InvalidAddressError is returned when a channel or user identity cannot be
// turned into a ChainAddress. Its message is the role specific
// "Invalid Channel CAIP!" / "Invalid User CAIP!".
type InvalidAddressError struct {
	Role  environment.Role
	Input string
	Err   error
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("Invalid %s CAIP!", e.Role)
}

func (e *InvalidAddressError) Unwrap() error {
	return e.Err
}

// Chain is a CAIP-2 chain id split into its parts
type Chain struct {
	Namespace string
	NetworkID string
}

func (c Chain) String() string {
	return c.Namespace + ":" + c.NetworkID
}

// ParseChain splits a CAIP-2 chain id
func ParseChain(s string) (Chain, error) {
	ns, id, ok := strings.Cut(s, ":")
	if !ok || !namespacePattern.MatchString(ns) || !networkIDPattern.MatchString(id) {
		return Chain{}, fmt.Errorf("%w: chain id %q", ErrMalformed, s)
	}
	return Chain{Namespace: ns, NetworkID: id}, nil
}

// ChainIDSource supplies the chain a bare address is placed on.
// It is the only point where resolution may perform I/O.
type ChainIDSource interface {
	DefaultChain(ctx context.Context, env environment.Env, role environment.Role) (Chain, error)
}

// Resolver normalizes raw channel and user identities
type Resolver struct {
	source ChainIDSource
	logger *zap.Logger
}

// NewResolver creates a resolver backed by the given chain source.
// A nil source falls back to the built-in environment table.
func NewResolver(source ChainIDSource, logger *zap.Logger) *Resolver {
	if source == nil {
		source = NewStaticChainIDSource(environment.Static)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}
}

// Resolve turns raw into a canonical ChainAddress.
//
// Accepted forms:
//   - namespace:networkId:address (CAIP-10)
//   - 0x-prefixed EVM address, placed on the default chain of the role
//   - eip155:0x... without a network id, placed on the default chain of the role
func (r *Resolver) Resolve(ctx context.Context, env environment.Env, raw string, role environment.Role) (ChainAddress, error) {
	invalid := func(err error) (ChainAddress, error) {
		return ChainAddress{}, &InvalidAddressError{Role: role, Input: raw, Err: err}
	}

	input := strings.TrimSpace(raw)
	if details := ParseDetails(input); details != nil {
		return canonical(*details), nil
	}

	var namespace, address string
	parts := strings.Split(input, ":")
	switch len(parts) {
	case 1:
		address = parts[0]
	case 2:
		namespace, address = parts[0], parts[1]
	default:
		return invalid(ErrMalformed)
	}

	// Only EVM addresses are self-describing enough to place on a default chain
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return invalid(ErrMalformed)
	}

	chain, err := r.source.DefaultChain(ctx, env, role)
	if err != nil {
		r.logger.Warn("default chain lookup failed",
			zap.String("env", env.String()),
			zap.String("role", string(role)),
			zap.Error(err),
		)
		return invalid(fmt.Errorf("default chain lookup: %w", err))
	}
	if namespace != "" && namespace != chain.Namespace {
		return invalid(ErrNamespaceChange)
	}

	resolved := ChainAddress{Namespace: chain.Namespace, NetworkID: chain.NetworkID, Address: address}
	if ParseDetails(resolved.String()) == nil {
		return invalid(ErrMalformed)
	}

	r.logger.Debug("resolved bare address",
		zap.String("input", raw),
		zap.String("chain", chain.String()),
		zap.String("role", string(role)),
	)
	return canonical(resolved), nil
}
