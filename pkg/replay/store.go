package replay

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultTTL is how long a seen proof is remembered
	DefaultTTL = 24 * time.Hour
)

// Store tracks verification proofs that have already been accepted.
// Implementations can use Redis or memory.
type Store interface {
	// Reserve claims digest for owner.
	// Returns ErrAlreadySeen if the digest is reserved or used.
	Reserve(ctx context.Context, digest, owner string) error

	// MarkUsed records digest as consumed after successful verification
	MarkUsed(ctx context.Context, digest, owner string) error
}

// Error definitions
var (
	ErrAlreadySeen = errors.New("proof already used or reserved")
)
