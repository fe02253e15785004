package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staking_wallet_back/models"
	"staking_wallet_back/pkg/client"
	"staking_wallet_back/pkg/repository/repotest"
	"staking_wallet_back/pkg/service"
)

type testEnv struct {
	router *gin.Engine
	api    *client.Client
	store  *repotest.Store
	mirror *repotest.Mirror
	svc    *service.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		store:  repotest.NewStore(),
		mirror: repotest.NewMirror(),
	}
	env.svc = service.NewService(env.store.Repository(), env.mirror, service.Config{ReferralCacheTTL: time.Minute})
	env.router = NewHandler(env.svc, Config{}).InitRoute()

	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)
	env.api = client.New(srv.URL)
	return env
}

// do issues a raw request so tests can assert on exact body shapes.
func (e *testEnv) do(method, path, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func requireAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	assert.Equal(t, status, apiErr.StatusCode)
	assert.Equal(t, message, apiErr.Message)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.api.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", out["status"])
}

func TestConnectFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.api.Connect(ctx, models.ConnectInput{WalletAddress: "W1"})
	require.NoError(t, err)
	assert.True(t, res.IsNewUser)
	assert.Equal(t, service.MsgWalletConnected, res.Message)
	assert.Len(t, res.ReferralCode, 8)
	assert.Equal(t, res.ReferralCode, res.UserReferralCode)
	assert.Nil(t, res.Jreferal)

	again, err := env.api.Connect(ctx, models.ConnectInput{WalletAddress: "W1"})
	require.NoError(t, err)
	assert.False(t, again.IsNewUser)
	assert.True(t, again.NeedsReferral)
	assert.Equal(t, res.ReferralCode, again.UserReferralCode)
}

func TestConnectRequiresAddress(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodPost, "/api/wallet/connect", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.MsgWalletAddressRequired, body["message"])

	status, body = env.do(http.MethodPost, "/api/wallet/connect", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, invalidBody, body["message"])
}

func TestReferralEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner, err := env.api.Connect(ctx, models.ConnectInput{WalletAddress: "OWNER"})
	require.NoError(t, err)
	_, err = env.api.Connect(ctx, models.ConnectInput{WalletAddress: "W2"})
	require.NoError(t, err)

	check, err := env.api.ValidateReferral(ctx, models.ValidateReferralInput{ReferralCode: owner.ReferralCode, WalletAddress: "W2"})
	require.NoError(t, err)
	assert.True(t, check.Valid)

	check, err = env.api.ValidateReferral(ctx, models.ValidateReferralInput{ReferralCode: "NOPE0000", WalletAddress: "W2"})
	require.NoError(t, err)
	assert.False(t, check.Valid)
	assert.Equal(t, service.MsgInvalidReferralCode, check.Message)

	res, err := env.api.SubmitReferral(ctx, models.SubmitReferralInput{WalletAddress: "W2", ReferralCode: owner.ReferralCode})
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, service.MsgReferralSubmitted, res.Message)
	assert.NotEmpty(t, res.ReferralCode)

	status, body := env.do(http.MethodPost, "/api/wallet/referral",
		`{"walletAddress":"W2","referralCode":"`+owner.ReferralCode+`"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, service.MsgAlreadyReferred, body["message"])

	connected, err := env.api.Connect(ctx, models.ConnectInput{WalletAddress: "W2"})
	require.NoError(t, err)
	assert.False(t, connected.NeedsReferral)
	require.NotNil(t, connected.Jreferal)
	assert.Equal(t, owner.ReferralCode, *connected.Jreferal)
}

func TestValidateReferralErrorShape(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodPost, "/api/wallet/validate-referral", `{"walletAddress":"W1"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.MsgReferralFieldsRequired, body["error"])

	env.store.FailOn("GetWalletByReferralCode", errors.New("connection reset"))
	status, body = env.do(http.MethodPost, "/api/wallet/validate-referral", `{"walletAddress":"W1","referralCode":"ABCD1234"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, service.MsgReferralValidateFailed, body["error"])
}

func TestSubmitReferralStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner, err := env.api.Connect(ctx, models.ConnectInput{WalletAddress: "OWNER"})
	require.NoError(t, err)

	env.store.FailOn("UpsertReferralEntry", errors.New("connection reset"))
	status, body := env.do(http.MethodPost, "/api/wallet/referral",
		`{"walletAddress":"W2","referralCode":"`+owner.ReferralCode+`"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, service.MsgReferralSubmitFailed, body["message"])
}

func TestSkipReferral(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.api.SkipReferral(ctx, models.SkipReferralInput{WalletAddress: "GHOST"})
	requireAPIError(t, err, http.StatusNotFound, service.MsgUserNotFound)

	_, err = env.api.Connect(ctx, models.ConnectInput{WalletAddress: "W1"})
	require.NoError(t, err)

	res, err := env.api.SkipReferral(ctx, models.SkipReferralInput{WalletAddress: "W1"})
	require.NoError(t, err)
	assert.Equal(t, service.MsgReferralSkipped, res.Message)

	_, err = env.api.SkipReferral(ctx, models.SkipReferralInput{WalletAddress: "W1"})
	requireAPIError(t, err, http.StatusBadRequest, service.MsgReferralAlreadyDone)

	connected, err := env.api.Connect(ctx, models.ConnectInput{WalletAddress: "W1"})
	require.NoError(t, err)
	assert.False(t, connected.NeedsReferral)
	assert.True(t, connected.HasSkippedReferral)
}

func TestStakeEndpoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.api.Stake(ctx, models.StakeInput{
		WalletAddress: "W1",
		Amount:        json.RawMessage(`100`),
		TxHash:        "tx1",
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "100", res.UserWallet.AmountStaked.String())

	_, err = env.api.Stake(ctx, models.StakeInput{
		WalletAddress: "W1",
		Amount:        json.RawMessage(`"50.5"`),
		TxHash:        "tx2",
	})
	require.NoError(t, err)

	info, err := env.api.StakeInfo(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, "150.5", info.AmountStaked.String())
	assert.Equal(t, int64(0), info.DaysStaked)

	stakes, err := env.api.Stakes(ctx, "W1")
	require.NoError(t, err)
	require.Len(t, stakes, 2)
	for _, s := range stakes {
		assert.Equal(t, models.StakeCompleted, s.Status)
	}

	_, err = env.api.Stake(ctx, models.StakeInput{
		WalletAddress: "W1",
		Amount:        json.RawMessage(`1`),
		TxHash:        "tx1",
	})
	requireAPIError(t, err, http.StatusBadRequest, service.MsgDuplicateTransaction)
}

func TestStakeErrorShapes(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodPost, "/api/wallet/stake", `{"walletAddress":"W1","amount":"abc","txHash":"tx1"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.MsgInvalidAmount, body["error"])

	status, body = env.do(http.MethodPost, "/api/wallet/stake", `{"walletAddress":"W1","amount":5}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.MsgTxHashRequired, body["error"])

	env.store.FailOn("AddStake", errors.New("connection reset"))
	status, body = env.do(http.MethodPost, "/api/wallet/stake", `{"walletAddress":"W1","amount":5,"txHash":"tx9"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, service.MsgStakeFailed, body["error"])
}

func TestStakeInfoErrorShapes(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodGet, "/api/wallet/stake-info", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, service.MsgWalletAddressRequired, body["message"])

	status, body = env.do(http.MethodGet, "/api/wallet/stake-info?walletAddress=GHOST", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0", body["amount_staked"])

	env.store.FailOn("GetWallet", errors.New("connection reset"))
	status, body = env.do(http.MethodGet, "/api/wallet/stake-info?walletAddress=W1", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, service.MsgStakeInfoFailed, body["error"])
}

func TestMirrorEndpoint(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.api.Connect(ctx, models.ConnectInput{WalletAddress: "W1"})
	require.NoError(t, err)

	_, err = env.api.Mirror(ctx, "W1")
	requireAPIError(t, err, http.StatusNotFound, service.MsgWalletNotMirrored)

	n, err := env.svc.RelayPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	snapshot, err := env.api.Mirror(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, "W1", snapshot.WalletAddress)
	assert.Equal(t, string(models.ReferralUndecided), snapshot.ReferralState)
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
