package eip712

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ahwlsqja/channel-optin/pkg/replay"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// EthVerifier implements Verifier using go-ethereum
type EthVerifier struct {
	store  replay.Store
	logger *zap.Logger
}

// Compile-time interface compliance check
var _ Verifier = (*EthVerifier)(nil)

// NewEthVerifier creates a verifier that records accepted proofs in store
func NewEthVerifier(store replay.Store, logger *zap.Logger) *EthVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EthVerifier{
		store:  store,
		logger: logger,
	}
}

// VerifyProof verifies the signer and consumes the proof
func (v *EthVerifier) VerifyProof(ctx context.Context, domain Domain, message Message, proof string, expected string) error {
	// 1. Validate expected signer
	if !common.IsHexAddress(expected) {
		return ErrInvalidAddress
	}

	// 2. Recover before touching the store so garbage never reserves a key
	recovered, err := v.RecoverSigner(domain, message, proof)
	if err != nil {
		return err
	}
	if recovered != common.HexToAddress(expected) {
		v.logger.Warn("proof signer mismatch",
			zap.String("expected", expected),
			zap.String("recovered", recovered.Hex()),
		)
		return ErrAddressMismatch
	}

	// 3. Reserve the proof (prevents replay). The key ignores v so 0/1 and
	// 27/28 encodings of the same signature collide.
	digest := crypto.Keccak256Hash(hexutil.MustDecode(proof)[:64]).Hex()
	if err := v.store.Reserve(ctx, digest, expected); err != nil {
		if errors.Is(err, replay.ErrAlreadySeen) {
			return ErrProofReplayed
		}
		return fmt.Errorf("proof reservation failed: %w", err)
	}

	// 4. Mark as used
	if err := v.store.MarkUsed(ctx, digest, expected); err != nil {
		v.logger.Error("failed to mark proof as used",
			zap.String("address", expected),
			zap.Error(err),
		)
		// Don't fail the verification, the reservation still blocks replays until TTL
	}

	v.logger.Info("subscription proof verified",
		zap.String("action", string(message.Action)),
		zap.String("address", expected),
		zap.Int64("chain_id", domain.ChainID),
	)
	return nil
}

// RecoverSigner recovers the address that signed message under domain
func (v *EthVerifier) RecoverSigner(domain Domain, message Message, proof string) (common.Address, error) {
	signature, err := hexutil.Decode(proof)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(signature) != 65 {
		return common.Address{}, ErrInvalidSignatureLen
	}

	schema, err := SchemaFor(message.Action)
	if err != nil {
		return common.Address{}, err
	}

	digest, err := Hash(domain, schema, message)
	if err != nil {
		return common.Address{}, err
	}

	// Normalize v value (27/28 -> 0/1)
	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	// Only low-S signatures are accepted. (r, N-s, v^1) recovers the same
	// signer but would hash to a different replay key.
	r, s := new(big.Int).SetBytes(sig[:32]), new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[64], r, s, true) {
		return common.Address{}, ErrMalleableSignature
	}

	pubKey, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: failed to recover public key: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}
