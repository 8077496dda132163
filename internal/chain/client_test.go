package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blues/takeover/internal/calc"
	"github.com/blues/takeover/internal/config"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(seed byte) string {
	return base58.Encode(bytes.Repeat([]byte{seed}, 32))
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeRPC 按方法名返回固定结果
func fakeRPC(t *testing.T, results map[string]interface{}) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if result, ok := results[req.Method]; ok {
			resp["result"] = result
		} else {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "Method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	client, err := Dial(context.Background(), config.ChainConfig{RpcUrl: url, TimeoutSeconds: 2})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func sampleAccount() *TakeoverAccount {
	return &TakeoverAccount{
		Authority:                key(1),
		V1TokenMint:              key(2),
		RewardVault:              key(3),
		TotalSupply:              big.NewInt(1_000_000_000_000_000),
		GoalAmount:               big.NewInt(100_000_000_000_000),
		RewardPoolTokens:         big.NewInt(800_000_000_000_000),
		LiquidityPoolTokens:      big.NewInt(200_000_000_000_000),
		MaxSafeTotalContribution: big.NewInt(522_666_666_666_666),
		TotalContributed:         new(big.Int).SetUint64(^uint64(0)),
		ContributorCount:         7,
		StartTime:                1_700_000_000,
		EndTime:                  1_700_086_400,
		RewardRateBp:             150,
		TargetParticipationBp:    1000,
		IsFinalized:              true,
		IsSuccessful:             true,
	}
}

func TestTakeoverAccountRoundTrip(t *testing.T) {
	acc := sampleAccount()
	data, err := EncodeTakeoverAccount(acc)
	require.NoError(t, err)
	assert.Len(t, data, TakeoverAccountSize)

	decoded, err := DecodeTakeoverAccount(data)
	require.NoError(t, err)
	assert.Equal(t, acc, decoded)
}

func TestDecodeTakeoverAccountRejectsBadData(t *testing.T) {
	data, err := EncodeTakeoverAccount(sampleAccount())
	require.NoError(t, err)

	_, err = DecodeTakeoverAccount(data[:TakeoverAccountSize-1])
	assert.ErrorIs(t, err, ErrInvalidAccount)

	data[0] ^= 0xff
	_, err = DecodeTakeoverAccount(data)
	assert.ErrorIs(t, err, ErrInvalidAccount)
}

func TestGetSlot(t *testing.T) {
	srv := fakeRPC(t, map[string]interface{}{"getSlot": 123456})
	slot, err := dial(t, srv.URL).GetSlot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), slot)
}

func TestGetTokenSupply(t *testing.T) {
	srv := fakeRPC(t, map[string]interface{}{
		"getTokenSupply": map[string]interface{}{
			"context": map[string]interface{}{"slot": 99},
			"value":   map[string]interface{}{"amount": "18446744073709551615", "decimals": 9, "uiAmountString": "18446744073.709551615"},
		},
	})
	client := dial(t, srv.URL)

	supply, err := client.GetTokenSupply(context.Background(), key(2))
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", supply.Amount.String())
	assert.Equal(t, 9, supply.Decimals)
	assert.Equal(t, uint64(99), supply.Slot)

	_, err = client.GetTokenSupply(context.Background(), "bad-mint")
	assert.ErrorIs(t, err, calc.ErrMalformedNumeric)
}

func TestGetTakeoverAccount(t *testing.T) {
	data, err := EncodeTakeoverAccount(sampleAccount())
	require.NoError(t, err)

	srv := fakeRPC(t, map[string]interface{}{
		"getAccountInfo": map[string]interface{}{
			"context": map[string]interface{}{"slot": 5},
			"value": map[string]interface{}{
				"data":     []string{base64.StdEncoding.EncodeToString(data), "base64"},
				"owner":    key(9),
				"lamports": 2_039_280,
			},
		},
	})

	acc, err := dial(t, srv.URL).GetTakeoverAccount(context.Background(), key(4))
	require.NoError(t, err)
	assert.Equal(t, sampleAccount(), acc)
}

func TestGetTakeoverAccountMissing(t *testing.T) {
	srv := fakeRPC(t, map[string]interface{}{
		"getAccountInfo": map[string]interface{}{"context": map[string]interface{}{"slot": 5}, "value": nil},
	})
	_, err := dial(t, srv.URL).GetTakeoverAccount(context.Background(), key(4))
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}

func TestRPCErrorIsReturned(t *testing.T) {
	srv := fakeRPC(t, map[string]interface{}{})
	_, err := dial(t, srv.URL).GetSlot(context.Background())
	assert.ErrorContains(t, err, "Method not found")
}
