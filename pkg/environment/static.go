package environment

const (
	prodAPIBaseURL    = "https://backend.epns.io/apis"
	stagingAPIBaseURL = "https://backend-staging.epns.io/apis"
	devAPIBaseURL     = "https://backend-dev.epns.io/apis"
	localAPIBaseURL   = "http://localhost:4000/apis"

	prodCommunicator    = "0xb3971BCef2D791bc4027BbfedFb47319A4AAaaAa"
	stagingCommunicator = "0x0c34d54a09CFe75BCcd878A469206Ae77E0fe6e7"
	devCommunicator     = "0x9dDCD7ed7151afab43044E4D694FA064742C428c"
	localCommunicator   = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

type envTable struct {
	defaultChain map[Role]string
	chains       map[string]Endpoint
}

// Static is the built-in environment table. It is never mutated after init.
var Static Lookup = staticLookup{
	Prod: {
		defaultChain: map[Role]string{
			RoleChannel: "eip155:1",
			RoleUser:    "eip155:1",
		},
		chains: chainsFor(prodAPIBaseURL, prodCommunicator,
			"eip155:1",     // Ethereum
			"eip155:137",   // Polygon
			"eip155:56",    // BNB Chain
			"eip155:10",    // Optimism
			"eip155:42161", // Arbitrum One
			"eip155:1101",  // Polygon zkEVM
		),
	},
	Staging: {
		defaultChain: map[Role]string{
			RoleChannel: "eip155:11155111",
			RoleUser:    "eip155:11155111",
		},
		chains: chainsFor(stagingAPIBaseURL, stagingCommunicator,
			"eip155:11155111", // Sepolia
			"eip155:80002",    // Polygon Amoy
			"eip155:97",       // BNB testnet
			"eip155:11155420", // OP Sepolia
			"eip155:421614",   // Arbitrum Sepolia
		),
	},
	Dev: {
		defaultChain: map[Role]string{
			RoleChannel: "eip155:11155111",
			RoleUser:    "eip155:11155111",
		},
		chains: chainsFor(devAPIBaseURL, devCommunicator,
			"eip155:11155111",
			"eip155:80002",
			"eip155:97",
			"eip155:11155420",
			"eip155:421614",
		),
	},
	Local: {
		defaultChain: map[Role]string{
			RoleChannel: "eip155:31337",
			RoleUser:    "eip155:31337",
		},
		chains: chainsFor(localAPIBaseURL, localCommunicator, "eip155:31337"),
	},
}

func chainsFor(apiBaseURL, communicator string, chainIDs ...string) map[string]Endpoint {
	out := make(map[string]Endpoint, len(chainIDs))
	for _, id := range chainIDs {
		out[id] = Endpoint{APIBaseURL: apiBaseURL, CommunicatorContract: communicator}
	}
	return out
}

type staticLookup map[Env]envTable

func (s staticLookup) Endpoint(env Env, chainID string) (Endpoint, error) {
	table, ok := s[env]
	if !ok {
		return Endpoint{}, &ConfigurationError{Env: env}
	}
	endpoint, ok := table.chains[chainID]
	if !ok {
		return Endpoint{}, &ConfigurationError{Env: env, ChainID: chainID}
	}
	return endpoint, nil
}

func (s staticLookup) DefaultChain(env Env, role Role) (string, error) {
	table, ok := s[env]
	if !ok {
		return "", &ConfigurationError{Env: env}
	}
	chainID, ok := table.defaultChain[role]
	if !ok {
		return "", &ConfigurationError{Env: env}
	}
	return chainID, nil
}

// Table is a caller-defined Lookup, mostly useful for tests and private deployments.
// Every chain of an environment shares the same Endpoint.
type Table map[Env]TableEntry

// TableEntry configures one environment of a Table
type TableEntry struct {
	Endpoint     Endpoint
	DefaultChain string
	Chains       []string
}

// Endpoint implements Lookup
func (t Table) Endpoint(env Env, chainID string) (Endpoint, error) {
	entry, ok := t[env]
	if !ok {
		return Endpoint{}, &ConfigurationError{Env: env}
	}
	for _, c := range entry.Chains {
		if c == chainID {
			return entry.Endpoint, nil
		}
	}
	return Endpoint{}, &ConfigurationError{Env: env, ChainID: chainID}
}

// DefaultChain implements Lookup
func (t Table) DefaultChain(env Env, _ Role) (string, error) {
	entry, ok := t[env]
	if !ok || entry.DefaultChain == "" {
		return "", &ConfigurationError{Env: env}
	}
	return entry.DefaultChain, nil
}
