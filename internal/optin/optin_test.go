package optin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahwlsqja/channel-optin/internal/common/errors"
	"github.com/ahwlsqja/channel-optin/internal/common/middleware"
	"github.com/ahwlsqja/channel-optin/pkg/caip"
	"github.com/ahwlsqja/channel-optin/pkg/channels"
	"github.com/ahwlsqja/channel-optin/pkg/eip712"
	"github.com/ahwlsqja/channel-optin/pkg/environment"
	"github.com/ahwlsqja/channel-optin/pkg/replay"
	"github.com/ahwlsqja/channel-optin/pkg/signer"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testChannel      = "0xC14d71f1b4B3c6b7c4b9b7c1f2e6a0d5b3a8e9f1"
	testCommunicator = "0xb3971BCef2D791bc4027BbfedFb47319A4AAaaAa"
)

type testEnv struct {
	srv     *httptest.Server
	metrics *Metrics
	lookup  environment.Table
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	te := &testEnv{metrics: NewMetrics(prometheus.NewRegistry())}
	router := gin.New()
	router.Use(middleware.RequestID())

	te.srv = httptest.NewServer(router)
	t.Cleanup(te.srv.Close)

	te.lookup = environment.Table{
		environment.Prod: {
			Endpoint: environment.Endpoint{
				APIBaseURL:           te.srv.URL + "/apis",
				CommunicatorContract: testCommunicator,
			},
			DefaultChain: "eip155:1",
			Chains:       []string{"eip155:1"},
		},
	}

	resolver := caip.NewResolver(caip.NewStaticChainIDSource(te.lookup), zap.NewNop())
	verifier := eip712.NewEthVerifier(replay.NewMemoryStore(0), zap.NewNop())
	service := NewService(ServiceConfig{Env: environment.Prod}, te.lookup, resolver, verifier, te.metrics, zap.NewNop())
	NewHandler(service).RegisterRoutes(router.Group("/apis"))
	return te
}

func newSigner(t *testing.T) *signer.LocalSigner {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return signer.NewLocalSignerFromKey(key)
}

// signedRequest builds the body channels.Client would send
func signedRequest(t *testing.T, s *signer.LocalSigner, action eip712.Action, chainID int64) SubscriptionRequest {
	t.Helper()
	schema, err := eip712.SchemaFor(action)
	require.NoError(t, err)
	msg, err := eip712.BuildMessage(testChannel, s.Address().Hex(), action)
	require.NoError(t, err)
	proof, err := s.SignTypedData(context.Background(), eip712.DomainFor(chainID, testCommunicator), schema, msg)
	require.NoError(t, err)

	req := SubscriptionRequest{
		VerificationProof: proof.String(),
		Message: SubscriptionMessage{
			Channel: "eip155:1:" + testChannel,
			Action:  string(action),
		},
	}
	user := "eip155:1:" + s.Address().Hex()
	if action == eip712.ActionUnsubscribe {
		req.Message.Unsubscriber = user
	} else {
		req.Message.Subscriber = user
	}
	return req
}

func (te *testEnv) post(t *testing.T, path string, body any) (*http.Response, middleware.ErrorResponse) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := te.srv.Client().Post(te.srv.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var errBody middleware.ErrorResponse
	if resp.StatusCode >= 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	}
	return resp, errBody
}

func TestRoundTrip_ChannelsClient(t *testing.T) {
	te := newTestEnv(t)
	client := channels.NewClient(channels.WithLookup(te.lookup), channels.WithHTTPClient(te.srv.Client()))
	s := newSigner(t)

	for _, op := range []struct {
		action eip712.Action
		call   func(context.Context, channels.Options) channels.Result
		want   string
	}{
		{eip712.ActionSubscribe, client.Subscribe, channels.MessageSubscribed},
		{eip712.ActionUnsubscribe, client.Unsubscribe, channels.MessageUnsubscribed},
	} {
		res := op.call(context.Background(), channels.Options{
			Signer:         s,
			ChannelAddress: "eip155:1:" + testChannel,
			UserAddress:    s.Address().Hex(),
		})
		assert.Equal(t, channels.Result{Status: channels.StatusSuccess, Message: op.want}, res, op.action)
		assert.Equal(t, 1.0, testutil.ToFloat64(te.metrics.Requests.WithLabelValues(string(op.action), OutcomeAccepted)))
	}
}

func TestSubscribe_Replay(t *testing.T) {
	te := newTestEnv(t)
	req := signedRequest(t, newSigner(t), eip712.ActionSubscribe, 1)
	path := "/apis/v1/channels/eip155:1:" + testChannel + "/subscribe"

	resp, _ := te.post(t, path, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := te.post(t, path, req)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, errors.CodeProofReplayed, body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)
	assert.Equal(t, 1.0, testutil.ToFloat64(te.metrics.Requests.WithLabelValues("Subscribe", OutcomeReplayed)))
}

func TestSubscribe_Rejections(t *testing.T) {
	te := newTestEnv(t)
	s := newSigner(t)
	subscribePath := "/apis/v1/channels/eip155:1:" + testChannel + "/subscribe"

	wrongChain := signedRequest(t, s, eip712.ActionSubscribe, 137)

	impostor := signedRequest(t, s, eip712.ActionSubscribe, 1)
	impostor.Message.Subscriber = "eip155:1:" + newSigner(t).Address().Hex()

	otherChannel := signedRequest(t, s, eip712.ActionSubscribe, 1)
	otherChannel.Message.Channel = "eip155:1:" + testCommunicator

	badUser := signedRequest(t, s, eip712.ActionSubscribe, 1)
	badUser.Message.Subscriber = "nobody"

	wrongAction := signedRequest(t, s, eip712.ActionUnsubscribe, 1)

	shortProof := signedRequest(t, s, eip712.ActionSubscribe, 1)
	shortProof.VerificationProof = "0x1234"

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"signed for another chain", subscribePath, wrongChain, http.StatusUnauthorized, errors.CodeInvalidProof},
		{"signed by someone else", subscribePath, impostor, http.StatusUnauthorized, errors.CodeInvalidProof},
		{"body channel differs from path", subscribePath, otherChannel, http.StatusBadRequest, errors.CodeInvalidInput},
		{"unresolvable user", subscribePath, badUser, http.StatusBadRequest, errors.CodeInvalidAddress},
		{"action does not match route", subscribePath, wrongAction, http.StatusBadRequest, errors.CodeInvalidInput},
		{"short proof", subscribePath, shortProof, http.StatusBadRequest, errors.CodeInvalidInput},
		{"malformed body", subscribePath, map[string]any{"verificationProof": 42}, http.StatusBadRequest, errors.CodeInvalidInput},
		{"bare channel in path", "/apis/v1/channels/" + testChannel + "/subscribe", signedRequest(t, s, eip712.ActionSubscribe, 1), http.StatusBadRequest, errors.CodeInvalidAddress},
		{"path on another chain than body", "/apis/v1/channels/eip155:5:" + testChannel + "/subscribe", signedRequest(t, s, eip712.ActionSubscribe, 5), http.StatusBadRequest, errors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := te.post(t, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestSubscribe_UnsupportedChain(t *testing.T) {
	te := newTestEnv(t)
	s := newSigner(t)

	req := signedRequest(t, s, eip712.ActionSubscribe, 5)
	req.Message.Channel = "eip155:5:" + testChannel
	req.Message.Subscriber = "eip155:5:" + s.Address().Hex()

	resp, body := te.post(t, "/apis/v1/channels/eip155:5:"+testChannel+"/subscribe", req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, errors.CodeUnsupportedChain, body.Error.Code)
}

func TestUnsubscribe_BareUser(t *testing.T) {
	te := newTestEnv(t)
	s := newSigner(t)

	req := signedRequest(t, s, eip712.ActionUnsubscribe, 1)
	req.Message.Unsubscriber = s.Address().Hex()

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := te.srv.Client().Post(te.srv.URL+"/apis/v1/channels/eip155:1:"+testChannel+"/unsubscribe", "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body middleware.SuccessResponse
	body.Data = &SubscriptionResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	receipt := body.Data.(*SubscriptionResponse)
	assert.Equal(t, "eip155:1:"+s.Address().Hex(), receipt.User)
	assert.Equal(t, "Unsubscribe", receipt.Action)
	assert.Equal(t, int64(1), receipt.ChainID)
	assert.NotEmpty(t, receipt.ReceiptID)
}
