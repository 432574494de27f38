// Package signer defines the structured-signing capability used to authorize
// channel subscription changes, plus the orchestration around it.
//
// A Signer receives the three EIP-712 parts (domain, schema, message) and
// returns a verification proof. How it obtains key material is its own
// business: LocalSigner holds an ECDSA key in memory, RemoteSigner forwards
// the payload to a Web3Signer-compatible JSON-RPC endpoint, and SignerFunc
// adapts any function (hardware wallets, tests).
//
// Signing may block on user or device confirmation, so every call takes a
// context and Orchestrator.Sign returns as soon as the context is done.
package signer

import (
	"context"
	"errors"

	"github.com/ahwlsqja/channel-optin/pkg/eip712"
)

// Proof is a 0x-prefixed hex signature forwarded verbatim to the backend
type Proof string

func (p Proof) String() string {
	return string(p)
}

// Signer produces a verification proof over EIP-712 typed data.
//
// The operation kind is carried by the payload itself: schema.PrimaryType and
// message.Action both name the eip712.Action being authorized, and
// Orchestrator.Sign refuses to call the signer when they disagree with the
// requested action.
type Signer interface {
	SignTypedData(ctx context.Context, domain eip712.Domain, schema eip712.Schema, message eip712.Message) (Proof, error)
}

// SignerFunc adapts a function to Signer
type SignerFunc func(ctx context.Context, domain eip712.Domain, schema eip712.Schema, message eip712.Message) (Proof, error)

// SignTypedData implements Signer
func (f SignerFunc) SignTypedData(ctx context.Context, domain eip712.Domain, schema eip712.Schema, message eip712.Message) (Proof, error) {
	return f(ctx, domain, schema, message)
}

// ErrRejected is returned (or wrapped) by signers when the user or device declined
var ErrRejected = errors.New("signing request rejected")

// Error definitions
var (
	ErrNoSigner   = errors.New("no signer configured")
	ErrEmptyProof = errors.New("signer returned an empty proof")
)

// SigningRejectedError means the signer declined to sign.
// The message is the signer's own.
type SigningRejectedError struct {
	Err error
}

func (e *SigningRejectedError) Error() string {
	return e.Err.Error()
}

func (e *SigningRejectedError) Unwrap() error {
	return e.Err
}

// SigningFailedError means the signer malfunctioned.
// The message is the signer's own.
type SigningFailedError struct {
	Err error
}

func (e *SigningFailedError) Error() string {
	return e.Err.Error()
}

func (e *SigningFailedError) Unwrap() error {
	return e.Err
}
