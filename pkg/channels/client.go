// Package channels implements opting a user into or out of a channel.
//
// Each call runs a linear pipeline: resolve the channel and user addresses,
// look up the environment endpoint, build the EIP-712 payload, ask the
// signer for a proof and post it to the backend. The first failing step
// ends the call; nothing is retried.
package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ahwlsqja/channel-optin/pkg/caip"
	"github.com/ahwlsqja/channel-optin/pkg/eip712"
	"github.com/ahwlsqja/channel-optin/pkg/environment"
	"github.com/ahwlsqja/channel-optin/pkg/signer"
	"go.uber.org/zap"
)

// DefaultTimeout bounds the HTTP submission of the default client
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is kept in SubmissionError
const maxErrorBody = 4 << 10

// Client submits subscription changes
type Client struct {
	httpClient   *http.Client
	lookup       environment.Lookup
	resolver     *caip.Resolver
	orchestrator *signer.Orchestrator
	logger       *zap.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets the client used for submission
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLookup replaces the built-in environment table
func WithLookup(lookup environment.Lookup) ClientOption {
	return func(c *Client) {
		if lookup != nil {
			c.lookup = lookup
		}
	}
}

// WithResolver replaces the address resolver. Without it the resolver
// places bare addresses on the default chains of the client's lookup.
func WithResolver(resolver *caip.Resolver) ClientOption {
	return func(c *Client) {
		c.resolver = resolver
	}
}

// NewClient creates a client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		lookup:     environment.Static,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		c.resolver = caip.NewResolver(caip.NewStaticChainIDSource(c.lookup), c.logger)
	}
	c.orchestrator = signer.NewOrchestrator(c.logger)
	return c
}

var defaultClient = NewClient()

// Subscribe opts the user into the channel using the default client
func Subscribe(ctx context.Context, opts Options) Result {
	return defaultClient.Subscribe(ctx, opts)
}

// Unsubscribe opts the user out of the channel using the default client
func Unsubscribe(ctx context.Context, opts Options) Result {
	return defaultClient.Unsubscribe(ctx, opts)
}

// Subscribe opts the user into the channel
func (c *Client) Subscribe(ctx context.Context, opts Options) Result {
	return c.execute(ctx, opts, eip712.ActionSubscribe, MessageSubscribed)
}

// Unsubscribe opts the user out of the channel
func (c *Client) Unsubscribe(ctx context.Context, opts Options) Result {
	return c.execute(ctx, opts, eip712.ActionUnsubscribe, MessageUnsubscribed)
}

// execute runs the pipeline and reports the outcome through both the
// returned Result and the matching callback
func (c *Client) execute(ctx context.Context, opts Options, action eip712.Action, successMessage string) Result {
	if err := c.run(ctx, opts, action); err != nil {
		c.logger.Warn("channel operation failed",
			zap.String("action", string(action)),
			zap.String("channel", opts.ChannelAddress),
			zap.Error(err),
		)
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return Result{Status: StatusError, Message: err.Error()}
	}

	if opts.OnSuccess != nil {
		opts.OnSuccess()
	}
	return Result{Status: StatusSuccess, Message: successMessage}
}

func (c *Client) run(ctx context.Context, opts Options, action eip712.Action) error {
	env := opts.Env
	if env == "" {
		env = environment.Default
	}

	channel, err := c.resolver.Resolve(ctx, env, opts.ChannelAddress, environment.RoleChannel)
	if err != nil {
		return err
	}
	chainID, err := channel.NumericNetworkID()
	if err != nil {
		return &caip.InvalidAddressError{Role: environment.RoleChannel, Input: opts.ChannelAddress, Err: err}
	}

	user, err := c.resolver.Resolve(ctx, env, opts.UserAddress, environment.RoleUser)
	if err != nil {
		return err
	}

	endpoint, err := c.lookup.Endpoint(env, channel.ChainID())
	if err != nil {
		return err
	}

	verifyingContract := opts.VerifyingContractAddress
	if verifyingContract == "" {
		verifyingContract = endpoint.CommunicatorContract
	}

	domain := eip712.DomainFor(chainID, verifyingContract)
	schema, err := eip712.SchemaFor(action)
	if err != nil {
		return err
	}
	message, err := eip712.BuildMessage(channel.Address, user.Address, action)
	if err != nil {
		return err
	}

	proof, err := c.orchestrator.Sign(ctx, opts.Signer, domain, schema, message, action)
	if err != nil {
		return err
	}

	body := Request{
		VerificationProof: proof.String(),
		Message:           message.Map(),
	}
	body.Message["channel"] = channel.String()
	body.Message[schema.UserField] = user.String()

	url := fmt.Sprintf("%s/v1/channels/%s/%s", strings.TrimRight(endpoint.APIBaseURL, "/"), channel, strings.ToLower(string(action)))
	return c.submit(ctx, url, body)
}

// submit posts body once. It does nothing if ctx is already done.
func (c *Client) submit(ctx context.Context, url string, body Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &SubmissionError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Info("channel operation submitted",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}
