package optin

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/ahwlsqja/channel-optin/internal/common/errors"
	"github.com/ahwlsqja/channel-optin/pkg/caip"
	"github.com/ahwlsqja/channel-optin/pkg/eip712"
	"github.com/ahwlsqja/channel-optin/pkg/environment"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceConfig selects the environment proofs are checked against
type ServiceConfig struct {
	Env environment.Env
	// VerifyingContract overrides the environment's communicator contract
	VerifyingContract string
}

// Service verifies subscription change requests.
// It does not store subscription state.
type Service struct {
	cfg      ServiceConfig
	lookup   environment.Lookup
	resolver *caip.Resolver
	verifier eip712.Verifier
	metrics  *Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new opt-in service
func NewService(cfg ServiceConfig, lookup environment.Lookup, resolver *caip.Resolver, verifier eip712.Verifier, metrics *Metrics, logger *zap.Logger) *Service {
	if cfg.Env == "" {
		cfg.Env = environment.Default
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		lookup:   lookup,
		resolver: resolver,
		verifier: verifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Process checks req against the channel in the path and consumes its proof
func (s *Service) Process(ctx context.Context, action eip712.Action, channelParam string, req *SubscriptionRequest) (*SubscriptionResponse, error) {
	resp, outcome, err := s.process(ctx, action, channelParam, req)
	s.metrics.observe(string(action), outcome)
	return resp, err
}

func (s *Service) process(ctx context.Context, action eip712.Action, channelParam string, req *SubscriptionRequest) (*SubscriptionResponse, string, error) {
	// 1. Action in body must match the route
	if !strings.EqualFold(req.Message.Action, string(action)) {
		return nil, OutcomeInvalidRequest, errors.InvalidInput("Message action does not match endpoint")
	}

	// 2. Channel: path must be a full CAIP address and agree with the body
	if caip.ParseDetails(channelParam) == nil {
		return nil, OutcomeInvalidRequest, errors.InvalidAddress("Invalid Channel CAIP!", channelParam)
	}
	channel, err := s.resolver.Resolve(ctx, s.cfg.Env, channelParam, environment.RoleChannel)
	if err != nil {
		return nil, OutcomeInvalidRequest, errors.InvalidAddress("Invalid Channel CAIP!", channelParam).WithError(err)
	}
	bodyChannel, err := s.resolver.Resolve(ctx, s.cfg.Env, req.Message.Channel, environment.RoleChannel)
	if err != nil || !bodyChannel.Equal(channel) {
		return nil, OutcomeInvalidRequest, errors.InvalidInput("Message channel does not match endpoint")
	}

	// 3. User: bare addresses from older clients go on the default chain
	rawUser := req.Message.User(action)
	user, err := s.resolver.Resolve(ctx, s.cfg.Env, rawUser, environment.RoleUser)
	if err != nil {
		return nil, OutcomeInvalidRequest, errors.InvalidAddress("Invalid User CAIP!", rawUser).WithError(err)
	}

	// 4. Domain, bound to the communicator of the channel's chain
	chainID, err := channel.NumericNetworkID()
	if err != nil {
		return nil, OutcomeInvalidRequest, errors.InvalidAddress("Invalid Channel CAIP!", channelParam).WithError(err)
	}
	endpoint, err := s.lookup.Endpoint(s.cfg.Env, channel.ChainID())
	if err != nil {
		return nil, OutcomeInvalidRequest, errors.UnsupportedChain(s.cfg.Env.String(), channel.ChainID()).WithError(err)
	}
	verifyingContract := s.cfg.VerifyingContract
	if verifyingContract == "" {
		verifyingContract = endpoint.CommunicatorContract
	}
	domain := eip712.DomainFor(chainID, verifyingContract)

	// 5. Rebuild exactly what the client signed
	message, err := eip712.BuildMessage(channel.Address, user.Address, action)
	if err != nil {
		return nil, OutcomeError, errors.Internal("Failed to build message").WithError(err)
	}

	// 6. Verify and consume the proof
	start := time.Now()
	err = s.verifier.VerifyProof(ctx, domain, message, req.VerificationProof, user.Address)
	if s.metrics != nil {
		s.metrics.VerifyDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return nil, s.classify(err), s.verifyError(action, channel, user, err)
	}

	resp := &SubscriptionResponse{
		ReceiptID:  uuid.New().String(),
		Action:     string(action),
		Channel:    channel.String(),
		User:       user.String(),
		ChainID:    chainID,
		VerifiedAt: s.now().UTC(),
	}

	s.logger.Info("subscription change accepted",
		zap.String("receipt_id", resp.ReceiptID),
		zap.String("action", resp.Action),
		zap.String("channel", resp.Channel),
		zap.String("user", resp.User),
	)
	return resp, OutcomeAccepted, nil
}

func (s *Service) classify(err error) string {
	switch {
	case stderrors.Is(err, eip712.ErrProofReplayed):
		return OutcomeReplayed
	case isProofError(err):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

func (s *Service) verifyError(action eip712.Action, channel, user caip.ChainAddress, err error) error {
	switch {
	case stderrors.Is(err, eip712.ErrProofReplayed):
		return errors.ProofReplayed()
	case isProofError(err):
		s.logger.Warn("proof verification failed",
			zap.String("action", string(action)),
			zap.String("channel", channel.String()),
			zap.String("user", user.String()),
			zap.Error(err),
		)
		// Fixed client message, details only in the log
		return errors.InvalidProof()
	default:
		s.logger.Error("proof store unavailable", zap.Error(err))
		return errors.StoreError(err)
	}
}

func isProofError(err error) bool {
	return stderrors.Is(err, eip712.ErrInvalidSignature) ||
		stderrors.Is(err, eip712.ErrInvalidSignatureLen) ||
		stderrors.Is(err, eip712.ErrInvalidAddress) ||
		stderrors.Is(err, eip712.ErrAddressMismatch)
}
