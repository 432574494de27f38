package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ahwlsqja/channel-optin/pkg/caip"
	"github.com/ahwlsqja/channel-optin/pkg/channels"
	"github.com/ahwlsqja/channel-optin/pkg/environment"
	"github.com/ahwlsqja/channel-optin/pkg/signer"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "channelctl",
		Usage: "Opt a wallet into or out of a notification channel",
		Description: `Signs an EIP-712 subscription message and submits it to the channel backend.

Addresses may be CAIP-10 (eip155:1:0x...) or bare 0x addresses, which are
placed on the default chain of the environment (or of --rpc-url).`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "Environment: prod, staging, dev or local",
				Value: string(environment.Default),
			},
			&cli.StringFlag{
				Name:  "rpc-url",
				Usage: "Ethereum RPC URL used to pick the chain for bare addresses",
			},
			&cli.StringFlag{
				Name:  "api-base-url",
				Usage: "Override the environment's backend URL",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Give up after this long, signing included",
				Value: 2 * time.Minute,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "subscribe",
				Usage:  "Opt the user into the channel",
				Flags:  operationFlags(),
				Action: subscribeCommand,
			},
			{
				Name:   "unsubscribe",
				Usage:  "Opt the user out of the channel",
				Flags:  operationFlags(),
				Action: unsubscribeCommand,
			},
		},
	}
}

func operationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "channel",
			Usage:    "Channel address",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "user",
			Usage: "User address (defaults to the signer's address)",
		},
		&cli.StringFlag{
			Name:  "verifying-contract",
			Usage: "Override the communicator contract in the signing domain",
		},
		&cli.StringFlag{
			Name:    "private-key",
			Usage:   "Hex private key to sign with",
			EnvVars: []string{"CHANNELCTL_PRIVATE_KEY"},
		},
		&cli.StringFlag{
			Name:  "remote-signer-url",
			Usage: "Web3Signer JSON-RPC URL to sign with instead of a local key",
		},
		&cli.StringFlag{
			Name:  "account",
			Usage: "Account the remote signer signs for",
		},
	}
}

func subscribeCommand(c *cli.Context) error {
	return runOperation(c, (*channels.Client).Subscribe)
}

func unsubscribeCommand(c *cli.Context) error {
	return runOperation(c, (*channels.Client).Unsubscribe)
}

type operation func(*channels.Client, context.Context, channels.Options) channels.Result

func runOperation(c *cli.Context, op operation) error {
	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	env, err := environment.Parse(c.String("env"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	s, user, closeSigner, err := buildSigner(ctx, c, logger)
	if err != nil {
		return err
	}
	defer closeSigner()

	client := channels.NewClient(clientOptions(c, env, logger)...)
	res := op(client, ctx, channels.Options{
		Signer:                   s,
		ChannelAddress:           c.String("channel"),
		UserAddress:              user,
		VerifyingContractAddress: c.String("verifying-contract"),
		Env:                      env,
	})

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(out))

	if !res.OK() {
		return cli.Exit(res.Message, 1)
	}
	return nil
}

func clientOptions(c *cli.Context, env environment.Env, logger *zap.Logger) []channels.ClientOption {
	var lookup environment.Lookup = environment.Static
	if base := c.String("api-base-url"); base != "" {
		lookup = baseURLOverride{Lookup: lookup, apiBaseURL: base}
	}

	opts := []channels.ClientOption{
		channels.WithLogger(logger),
		channels.WithLookup(lookup),
	}
	if rpcURL := c.String("rpc-url"); rpcURL != "" {
		source := caip.NewRPCChainIDSource(map[environment.Env]string{env: rpcURL}, logger)
		opts = append(opts, channels.WithResolver(caip.NewResolver(source, logger)))
	}
	return opts
}

// buildSigner returns the signer selected by flags and the user address to
// act for. --user wins over the signer's own address.
func buildSigner(ctx context.Context, c *cli.Context, logger *zap.Logger) (signer.Signer, string, func(), error) {
	noop := func() {}
	user := c.String("user")

	switch {
	case c.String("private-key") != "" && c.String("remote-signer-url") != "":
		return nil, "", noop, fmt.Errorf("--private-key and --remote-signer-url are mutually exclusive")

	case c.String("private-key") != "":
		local, err := signer.NewLocalSigner(c.String("private-key"))
		if err != nil {
			return nil, "", noop, err
		}
		if user == "" {
			user = local.Address().Hex()
		}
		return local, user, noop, nil

	case c.String("remote-signer-url") != "":
		account := c.String("account")
		if !common.IsHexAddress(account) {
			return nil, "", noop, fmt.Errorf("--account must be an address when using --remote-signer-url")
		}
		remote, err := signer.DialRemoteSigner(ctx, c.String("remote-signer-url"), common.HexToAddress(account), logger)
		if err != nil {
			return nil, "", noop, err
		}
		if user == "" {
			user = remote.Address().Hex()
		}
		return remote, user, remote.Close, nil

	default:
		return nil, "", noop, fmt.Errorf("one of --private-key or --remote-signer-url is required")
	}
}

// baseURLOverride keeps the environment's contracts but sends requests elsewhere
type baseURLOverride struct {
	environment.Lookup
	apiBaseURL string
}

func (o baseURLOverride) Endpoint(env environment.Env, chainID string) (environment.Endpoint, error) {
	endpoint, err := o.Lookup.Endpoint(env, chainID)
	if err != nil {
		return environment.Endpoint{}, err
	}
	endpoint.APIBaseURL = o.apiBaseURL
	return endpoint, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}
