package signer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahwlsqja/channel-optin/pkg/eip712"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

const (
	// codeUserRejected is the EIP-1193 "user rejected request" error code
	codeUserRejected = 4001

	methodSignTypedData = "eth_signTypedData"
)

// RemoteSigner forwards typed data to a Web3Signer-compatible JSON-RPC service
type RemoteSigner struct {
	client  *rpc.Client
	account common.Address
	logger  *zap.Logger
}

// DialRemoteSigner connects to the signing service at url
func DialRemoteSigner(ctx context.Context, url string, account common.Address, logger *zap.Logger) (*RemoteSigner, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial remote signer: %w", err)
	}
	return NewRemoteSigner(client, account, logger), nil
}

// NewRemoteSigner wraps an existing RPC client
func NewRemoteSigner(client *rpc.Client, account common.Address, logger *zap.Logger) *RemoteSigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteSigner{client: client, account: account, logger: logger}
}

// Address returns the account the service signs for
func (s *RemoteSigner) Address() common.Address {
	return s.account
}

// SignTypedData implements Signer
func (s *RemoteSigner) SignTypedData(ctx context.Context, domain eip712.Domain, schema eip712.Schema, message eip712.Message) (Proof, error) {
	if s == nil || s.client == nil {
		return "", ErrNoSigner
	}
	typedData := eip712.TypedData(domain, schema, message)

	var signature string
	err := s.client.CallContext(ctx, &signature, methodSignTypedData, s.account.Hex(), typedData)
	if err != nil {
		var rpcErr rpc.Error
		if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == codeUserRejected {
			return "", fmt.Errorf("%w: %s", ErrRejected, rpcErr.Error())
		}
		s.logger.Error("remote signing failed",
			zap.String("account", s.account.Hex()),
			zap.Error(err),
		)
		return "", fmt.Errorf("remote signer: %w", err)
	}

	return Proof(signature), nil
}

// Close releases the RPC connection
func (s *RemoteSigner) Close() {
	s.client.Close()
}
