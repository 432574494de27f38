package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ahwlsqja/channel-optin/pkg/channels"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const (
	testPrivateKey = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testChannel    = "0xC14d71f1b4B3c6b7c4b9b7c1f2e6a0d5b3a8e9f1"
)

type fakeBackend struct {
	*httptest.Server
	posts    atomic.Int32
	lastPath atomic.Value
	lastBody atomic.Value
}

func newFakeBackend(t *testing.T, status int) *fakeBackend {
	t.Helper()
	b := &fakeBackend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		b.posts.Add(1)
		b.lastPath.Store(r.URL.Path)
		b.lastBody.Store(raw)
		w.WriteHeader(status)
	}))
	t.Cleanup(b.Close)
	return b
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"channelctl"}, args...))
	return out.String(), err
}

func TestUnsubscribe(t *testing.T) {
	b := newFakeBackend(t, http.StatusNoContent)

	out, err := runApp(t,
		"--api-base-url", b.URL,
		"unsubscribe",
		"--channel", "eip155:1:"+testChannel,
		"--private-key", testPrivateKey,
	)
	require.NoError(t, err)

	var res channels.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, channels.Result{Status: channels.StatusSuccess, Message: channels.MessageUnsubscribed}, res)

	channel := "eip155:1:" + common.HexToAddress(testChannel).Hex()
	assert.Equal(t, int32(1), b.posts.Load())
	assert.Equal(t, "/v1/channels/"+channel+"/unsubscribe", b.lastPath.Load())

	var body channels.Request
	require.NoError(t, json.Unmarshal(b.lastBody.Load().([]byte), &body))
	assert.Equal(t, channel, body.Message["channel"])
	// user defaults to the signer, placed on the prod default chain
	assert.Regexp(t, `^eip155:1:0x[0-9a-fA-F]{40}$`, body.Message["unsubscriber"])
}

func TestSubscribe_ExplicitUser(t *testing.T) {
	b := newFakeBackend(t, http.StatusOK)
	user := "0xA11cE1cE7a5b1c9d3F2e4D6b8A0c2E4f6A8b0C2d"

	_, err := runApp(t,
		"--api-base-url", b.URL,
		"subscribe",
		"--channel", testChannel,
		"--user", user,
		"--private-key", testPrivateKey,
	)
	require.NoError(t, err)

	var body channels.Request
	require.NoError(t, json.Unmarshal(b.lastBody.Load().([]byte), &body))
	assert.Equal(t, "eip155:1:"+common.HexToAddress(user).Hex(), body.Message["subscriber"])
	assert.Equal(t, "Subscribe", body.Message["action"])
}

func TestSubscribe_BackendError(t *testing.T) {
	b := newFakeBackend(t, http.StatusInternalServerError)

	out, err := runApp(t,
		"--api-base-url", b.URL,
		"subscribe",
		"--channel", "eip155:1:"+testChannel,
		"--private-key", testPrivateKey,
	)
	require.Error(t, err)

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, out, `"status": "error"`)
	assert.Equal(t, int32(1), b.posts.Load())
}

func TestSignerFlags(t *testing.T) {
	b := newFakeBackend(t, http.StatusOK)

	tests := []struct {
		name string
		args []string
	}{
		{"no signer", []string{"--channel", testChannel}},
		{"both signers", []string{"--channel", testChannel, "--private-key", testPrivateKey, "--remote-signer-url", b.URL}},
		{"remote without account", []string{"--channel", testChannel, "--remote-signer-url", b.URL}},
		{"bad key", []string{"--channel", testChannel, "--private-key", "0xzz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CHANNELCTL_PRIVATE_KEY", "")
			args := append([]string{"--api-base-url", b.URL, "subscribe"}, tt.args...)
			_, err := runApp(t, args...)
			assert.Error(t, err)
		})
	}
	assert.Zero(t, b.posts.Load())
}

func TestUnknownEnv(t *testing.T) {
	_, err := runApp(t, "--env", "mainnet", "subscribe", "--channel", testChannel, "--private-key", testPrivateKey)
	assert.ErrorContains(t, err, "unknown environment")
}
