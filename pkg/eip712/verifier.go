package eip712

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Verifier checks verification proofs produced for subscription messages
type Verifier interface {
	// VerifyProof checks that expected signed message under domain and
	// consumes the proof so it cannot be presented twice
	VerifyProof(ctx context.Context, domain Domain, message Message, proof string, expected string) error

	// RecoverSigner returns the address that produced proof, without replay handling
	RecoverSigner(domain Domain, message Message, proof string) (common.Address, error)
}

// Error definitions
var (
	ErrInvalidSignature    = errors.New("invalid signature")
	ErrInvalidSignatureLen = errors.New("signature must be 65 bytes")
	ErrInvalidAddress      = errors.New("invalid ethereum address")
	ErrAddressMismatch     = errors.New("recovered address does not match")
	ErrProofReplayed       = errors.New("verification proof already used")
	ErrMalleableSignature  = fmt.Errorf("%w: non-canonical signature values", ErrInvalidSignature)
)
