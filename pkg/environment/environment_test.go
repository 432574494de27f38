package environment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Env
	}{
		{"", Prod},
		{"prod", Prod},
		{"PRODUCTION", Prod},
		{"staging", Staging},
		{" dev ", Dev},
		{"local", Local},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Parse("mainnet")
	assert.ErrorIs(t, err, ErrUnknownEnv)
}

func TestStatic_Endpoint(t *testing.T) {
	endpoint, err := Static.Endpoint(Prod, "eip155:1")
	require.NoError(t, err)
	assert.Equal(t, prodAPIBaseURL, endpoint.APIBaseURL)
	assert.Equal(t, prodCommunicator, endpoint.CommunicatorContract)

	endpoint, err = Static.Endpoint(Staging, "eip155:11155111")
	require.NoError(t, err)
	assert.Equal(t, stagingAPIBaseURL, endpoint.APIBaseURL)
}

func TestStatic_Endpoint_UnknownChain(t *testing.T) {
	_, err := Static.Endpoint(Prod, "eip155:11155111")
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, Prod, cfgErr.Env)
	assert.Equal(t, "eip155:11155111", cfgErr.ChainID)
	assert.Equal(t, "config not found for eip155:11155111 in environment prod", err.Error())
}

func TestStatic_Endpoint_UnknownEnv(t *testing.T) {
	_, err := Static.Endpoint(Env("qa"), "eip155:1")
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, cfgErr.ChainID)
}

func TestStatic_DefaultChain(t *testing.T) {
	for _, role := range []Role{RoleChannel, RoleUser} {
		chain, err := Static.DefaultChain(Prod, role)
		require.NoError(t, err)
		assert.Equal(t, "eip155:1", chain)

		chain, err = Static.DefaultChain(Local, role)
		require.NoError(t, err)
		assert.Equal(t, "eip155:31337", chain)
	}
}

// Every default chain must itself be configured, otherwise a bare address
// resolves and then fails at config lookup.
func TestStatic_DefaultChainsAreConfigured(t *testing.T) {
	for _, env := range []Env{Prod, Staging, Dev, Local} {
		for _, role := range []Role{RoleChannel, RoleUser} {
			chain, err := Static.DefaultChain(env, role)
			require.NoError(t, err)
			_, err = Static.Endpoint(env, chain)
			assert.NoError(t, err, "%s/%s", env, role)
		}
	}
}

func TestTable(t *testing.T) {
	table := Table{
		Local: {
			Endpoint:     Endpoint{APIBaseURL: "http://127.0.0.1:1234/apis", CommunicatorContract: "0x01"},
			DefaultChain: "chain:1",
			Chains:       []string{"chain:1"},
		},
	}

	endpoint, err := table.Endpoint(Local, "chain:1")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:1234/apis", endpoint.APIBaseURL)

	_, err = table.Endpoint(Local, "chain:2")
	assert.Error(t, err)

	chain, err := table.DefaultChain(Local, RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "chain:1", chain)

	_, err = table.DefaultChain(Prod, RoleUser)
	assert.Error(t, err)
}
