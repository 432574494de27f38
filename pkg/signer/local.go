package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ahwlsqja/channel-optin/pkg/eip712"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// LocalSigner signs with an in-memory ECDSA key
type LocalSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// Compile-time interface compliance checks
var (
	_ Signer = (*LocalSigner)(nil)
	_ Signer = (*RemoteSigner)(nil)
	_ Signer = SignerFunc(nil)
)

// NewLocalSigner creates a signer from a hex-encoded private key
func NewLocalSigner(privateKeyHex string) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not parse private key: %w", err)
	}
	return NewLocalSignerFromKey(key), nil
}

// NewLocalSignerFromKey wraps an existing key
func NewLocalSignerFromKey(key *ecdsa.PrivateKey) *LocalSigner {
	return &LocalSigner{
		privateKey: key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
	}
}

// Address returns the signing address
func (s *LocalSigner) Address() common.Address {
	return s.address
}

// SignTypedData implements Signer
func (s *LocalSigner) SignTypedData(ctx context.Context, domain eip712.Domain, schema eip712.Schema, message eip712.Message) (Proof, error) {
	if s == nil || s.privateKey == nil {
		return "", ErrNoSigner
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	digest, err := eip712.Hash(domain, schema, message)
	if err != nil {
		return "", err
	}

	sig, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign digest: %w", err)
	}
	// Adjust V from 0/1 to 27/28 for Ethereum compatibility
	sig[64] += 27

	return Proof(hexutil.Encode(sig)), nil
}
