// Package bitcoin talks to Bitcoin Core and LND through the development proxy.
//
// Every call degrades to deterministic mock data when the proxy or the node
// behind it is unreachable. Callers get the data plus a degraded flag and
// never see a transport error.
package bitcoin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SatsPerBTC converts BTC amounts reported by RPC into satoshis
const SatsPerBTC = 100_000_000

// DefaultTimeout bounds every proxy request
const DefaultTimeout = 3 * time.Second

// rpcRequest is the body the proxy forwards to Bitcoin Core
type rpcRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// rpcResponse is the proxy's reply. Mock is set when the proxy itself fell back.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  any             `json:"error"`
	Mock   bool            `json:"mock"`
}

// BlockchainInfo is the subset of getblockchaininfo the game shows
type BlockchainInfo struct {
	Chain         string `json:"chain"`
	Blocks        int    `json:"blocks"`
	Headers       int    `json:"headers"`
	BestBlockHash string `json:"bestblockhash"`
}

// Unspent is one listunspent entry
type Unspent struct {
	TxID          string  `json:"txid"`
	Vout          int     `json:"vout"`
	Address       string  `json:"address"`
	Amount        float64 `json:"amount"`
	Confirmations int     `json:"confirmations"`
	Spendable     bool    `json:"spendable"`
}

// CoreClient calls Bitcoin Core RPC via the proxy
type CoreClient struct {
	baseURL string
	http    *http.Client
	log     *zap.SugaredLogger

	connected bool
	mock      bool
}

// NewCoreClient creates a client for the proxy at baseURL (e.g. http://localhost:3001)
func NewCoreClient(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *CoreClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CoreClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Connect probes the proxy and node. It never fails; it returns false when
// the client has switched to mock mode.
func (c *CoreClient) Connect(ctx context.Context) bool {
	c.connected = true

	if err := c.health(ctx); err != nil {
		c.log.Warnw("bitcoin proxy unavailable, using mock mode", "error", err)
		c.mock = true
		return false
	}

	resp, err := c.post(ctx, "getblockchaininfo", nil)
	if err != nil || (resp.Error != nil && resp.Mock) {
		c.log.Warnw("bitcoin core unavailable, using mock mode", "error", err)
		c.mock = true
		return false
	}

	c.mock = false
	c.log.Infow("bitcoin core connected")
	return true
}

// Mock reports whether the client answers from mock data
func (c *CoreClient) Mock() bool {
	return c.mock
}

// Call runs an RPC method and returns the raw result.
// degraded is true when the result is mock data.
func (c *CoreClient) Call(ctx context.Context, method string, params ...any) (result json.RawMessage, degraded bool) {
	if c.mock || !c.connected {
		return mockRPC(method, params), true
	}

	resp, err := c.post(ctx, method, params)
	if err != nil {
		c.log.Warnw("rpc call failed, using mock data", "method", method, "error", err)
		return mockRPC(method, params), true
	}
	if resp.Error != nil {
		c.log.Warnw("rpc call returned error, using mock data", "method", method, "error", resp.Error, "proxy_mock", resp.Mock)
		if resp.Mock && !isNull(resp.Result) {
			return resp.Result, true
		}
		return mockRPC(method, params), true
	}
	return resp.Result, false
}

// BlockchainInfo returns chain status
func (c *CoreClient) BlockchainInfo(ctx context.Context) (BlockchainInfo, bool) {
	var info BlockchainInfo
	raw, degraded := c.Call(ctx, "getblockchaininfo")
	if err := json.Unmarshal(raw, &info); err != nil {
		_ = json.Unmarshal(mockRPC("getblockchaininfo", nil), &info)
		return info, true
	}
	return info, degraded
}

// ListUnspent returns confirmed outputs paying address
func (c *CoreClient) ListUnspent(ctx context.Context, address string) ([]Unspent, bool) {
	var utxos []Unspent
	raw, degraded := c.Call(ctx, "listunspent", 1, 9999999, []string{address})
	if err := json.Unmarshal(raw, &utxos); err != nil {
		_ = json.Unmarshal(mockRPC("listunspent", []any{1, 9999999, []string{address}}), &utxos)
		return utxos, true
	}
	return utxos, degraded
}

// GetBalance sums the unspent outputs of address in satoshis
func (c *CoreClient) GetBalance(ctx context.Context, address string) (int64, bool) {
	utxos, degraded := c.ListUnspent(ctx, address)
	var total float64
	for _, u := range utxos {
		total += u.Amount
	}
	return int64(math.Round(total * SatsPerBTC)), degraded
}

func isNull(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

func (c *CoreClient) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("proxy health: status %d", resp.StatusCode)
	}
	return nil
}

func (c *CoreClient) post(ctx context.Context, method string, params []any) (*rpcResponse, error) {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bitcoin-rpc", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", method, err)
	}
	return &out, nil
}
