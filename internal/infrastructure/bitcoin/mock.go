package bitcoin

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MockAddress is used in mock utxos when the caller gave none
const MockAddress = "bcrt1qmockaddress"

// MockBlockchainInfo is the getblockchaininfo reply in mock mode
var MockBlockchainInfo = map[string]any{
	"chain":                "regtest",
	"blocks":               150,
	"headers":              150,
	"bestblockhash":        "mock_hash_123",
	"difficulty":           4.656542373906925e-10,
	"mediantime":           1234567890,
	"verificationprogress": 1,
	"initialblockdownload": false,
	"pruned":               false,
	"warnings":             "",
}

// mockRPC returns deterministic data for the RPC methods the game uses
func mockRPC(method string, params []any) json.RawMessage {
	var v any
	switch method {
	case "getblockchaininfo":
		v = MockBlockchainInfo
	case "getbalance":
		v = 1.5
	case "listunspent":
		v = []map[string]any{{
			"txid":          "mock_txid_1",
			"vout":          0,
			"address":       mockAddress(params),
			"label":         "",
			"scriptPubKey":  "mock_script",
			"amount":        1.0,
			"confirmations": 100,
			"spendable":     true,
			"solvable":      true,
			"safe":          true,
		}}
	default:
		v = nil
	}
	raw, _ := json.Marshal(v)
	return raw
}

func mockAddress(params []any) string {
	if len(params) < 3 {
		return MockAddress
	}
	switch addrs := params[2].(type) {
	case []string:
		if len(addrs) > 0 {
			return addrs[0]
		}
	case []any:
		if len(addrs) > 0 {
			if a, ok := addrs[0].(string); ok {
				return a
			}
		}
	}
	return MockAddress
}

// MockResult exposes the RPC mock for the proxy's fallback replies
func MockResult(method string, params []any) json.RawMessage {
	return mockRPC(method, params)
}

// MockLND returns deterministic data for an LND REST endpoint
func MockLND(endpoint string) any {
	switch {
	case endpoint == "/v1/getinfo":
		return NodeInfo{
			IdentityPubkey:    "mock_pubkey_123",
			Alias:             "Mock LND Node",
			NumActiveChannels: 3,
			NumPeers:          2,
			BlockHeight:       150,
			SyncedToChain:     true,
			Version:           "0.15.5-mock",
		}
	case endpoint == "/v1/invoices":
		return Invoice{
			PaymentRequest: "lnbc10u1mock",
			AddIndex:       "1",
			PaymentAddr:    "mock_payment_addr",
			RHash:          base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("mock_hash_%d", time.Now().UnixNano()))),
		}
	case endpoint == "/v1/balance/channels":
		return ChannelBalance{
			Balance:       "1000000",
			LocalBalance:  Amount{Sat: "500000"},
			RemoteBalance: Amount{Sat: "500000"},
		}
	case strings.HasPrefix(endpoint, "/v1/invoice/"):
		return InvoiceState{Settled: true, State: "SETTLED"}
	default:
		return InvoiceState{Settled: true, State: "SETTLED"}
	}
}
