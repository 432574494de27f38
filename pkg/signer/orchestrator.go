package signer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahwlsqja/channel-optin/pkg/eip712"
	"go.uber.org/zap"
)

// Orchestrator drives one signing ceremony per call
type Orchestrator struct {
	logger *zap.Logger
}

// NewOrchestrator creates an orchestrator; a nil logger disables logging
func NewOrchestrator(logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{logger: logger}
}

type signResult struct {
	proof Proof
	err   error
}

// Sign asks s for a proof over domain/schema/message.
//
// The call yields exactly one result: the proof, the context error if ctx is
// done first, a *SigningRejectedError or a *SigningFailedError. Nothing is retried.
func (o *Orchestrator) Sign(ctx context.Context, s Signer, domain eip712.Domain, schema eip712.Schema, message eip712.Message, action eip712.Action) (Proof, error) {
	if s == nil {
		return "", &SigningFailedError{Err: ErrNoSigner}
	}
	if schema.PrimaryType != string(action) || message.Action != action {
		return "", &SigningFailedError{Err: fmt.Errorf("payload for %s/%s does not match action %s", schema.PrimaryType, message.Action, action)}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Buffered so an abandoned signer can still deliver and exit
	done := make(chan signResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- signResult{err: fmt.Errorf("signer panicked: %v", r)}
			}
		}()
		proof, err := s.SignTypedData(ctx, domain, schema, message)
		done <- signResult{proof: proof, err: err}
	}()

	var res signResult
	select {
	case <-ctx.Done():
		o.logger.Info("signing abandoned",
			zap.String("action", string(action)),
			zap.Error(ctx.Err()),
		)
		return "", ctx.Err()
	case res = <-done:
	}

	switch {
	case res.err == nil && res.proof == "":
		return "", &SigningFailedError{Err: ErrEmptyProof}
	case res.err == nil:
		o.logger.Debug("typed data signed",
			zap.String("action", string(action)),
			zap.Int64("chain_id", domain.ChainID),
		)
		return res.proof, nil
	case errors.Is(res.err, ErrRejected):
		o.logger.Info("signing rejected",
			zap.String("action", string(action)),
			zap.Error(res.err),
		)
		return "", &SigningRejectedError{Err: res.err}
	case errors.Is(res.err, context.Canceled), errors.Is(res.err, context.DeadlineExceeded):
		return "", res.err
	default:
		o.logger.Warn("signing failed",
			zap.String("action", string(action)),
			zap.Error(res.err),
		)
		return "", &SigningFailedError{Err: res.err}
	}
}
