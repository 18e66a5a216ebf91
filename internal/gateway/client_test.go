package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-core/internal/manifest"
	"review-core/internal/review"
	"review-core/internal/submit"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testServer(t *testing.T, routes map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPreviewManifest_DecodesEffects(t *testing.T) {
	srv := testServer(t, map[string]interface{}{
		"/transaction/preview": map[string]interface{}{
			"withdrawals": []map[string]interface{}{
				{"account_address": "account_a", "resource_address": "resource_xrd", "kind": "fungible", "amount": "100"},
			},
			"deposits": []map[string]interface{}{
				{"account_address": "account_b", "resource_address": "resource_gum", "kind": "fungible", "amount": "53.2", "estimated": true, "instruction_index": 4},
			},
			"encountered_addresses": []string{"component_dex"},
			"fee_estimate":          "1.2",
			"fee_payer_address":     "account_a",
			"manifest_with_lock_fee": []map[string]interface{}{
				{"kind": "LOCK_FEE", "address": "account_a", "amount": "1.2"},
				{"kind": "CALL_METHOD", "raw": "CALL_METHOD component_dex swap;"},
			},
		},
	})

	c := NewClient(srv.URL, 1, 0)
	result, err := c.PreviewManifest(context.Background(), manifest.Manifest{})
	require.NoError(t, err)

	require.Len(t, result.RawWithdrawals, 1)
	assert.False(t, result.RawWithdrawals[0].Certainty.Estimated)

	require.Len(t, result.RawDeposits, 1)
	deposit := result.RawDeposits[0]
	assert.True(t, deposit.Certainty.Estimated)
	assert.EqualValues(t, 4, deposit.Certainty.InstructionIndex)
	assert.Equal(t, review.ResourceFungible, deposit.Specifier.Kind)

	require.Len(t, result.ManifestWithLockFee.Instructions, 2)
	assert.Equal(t, manifest.KindLockFee, result.ManifestWithLockFee.Instructions[0].Kind)
	assert.True(t, result.FeeEstimate.Equal(dec("1.2")))
}

func TestPreviewManifest_GatewayErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "core api unavailable", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 1, 0)
	_, err := c.PreviewManifest(context.Background(), manifest.Manifest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestFetchResourceMetadata(t *testing.T) {
	srv := testServer(t, map[string]interface{}{
		"/state/resource": map[string]interface{}{
			"name": "Gumball", "symbol": "GUM", "kind": "fungible", "divisibility": 6,
		},
	})

	c := NewClient(srv.URL, 1, 0)
	md, err := c.FetchResourceMetadata(context.Background(), "resource_gum")
	require.NoError(t, err)
	assert.Equal(t, "Gumball", md.Name)
	assert.Equal(t, review.ResourceFungible, md.Kind)
	assert.EqualValues(t, 6, md.Divisibility)
}

func TestSubmitAndPoll(t *testing.T) {
	srv := testServer(t, map[string]interface{}{
		"/transaction/submit": map[string]interface{}{"duplicate": true},
		"/transaction/status": map[string]interface{}{"status": "Committed", "tx_id": "txid_abc"},
	})

	c := NewClient(srv.URL, 1, 0)

	result, err := c.Submit(context.Background(), &submit.SignedPayload{IntentID: "i", Payload: []byte{1}})
	require.NoError(t, err)
	assert.True(t, result.Duplicate)

	status, err := c.PollStatus(context.Background(), "i")
	require.NoError(t, err)
	assert.True(t, status.Committed)
	assert.Equal(t, "txid_abc", status.TxID)
}

func TestPollStatus_UnknownStatusIsPending(t *testing.T) {
	srv := testServer(t, map[string]interface{}{
		"/transaction/status": map[string]interface{}{"status": "InMempool"},
	})

	c := NewClient(srv.URL, 1, 0)
	status, err := c.PollStatus(context.Background(), "i")
	require.NoError(t, err)
	assert.True(t, status.Pending)
	assert.False(t, status.Committed)
}
