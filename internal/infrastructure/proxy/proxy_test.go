package proxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/hollowhouse/internal/infrastructure/bitcoin"
	"github.com/younwookim/hollowhouse/internal/infrastructure/telemetry"
)

func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func newTestProxy(t *testing.T, cfg Config) (*httptest.Server, *telemetry.Metrics) {
	t.Helper()
	if cfg.AllowOrigins == nil {
		cfg.AllowOrigins = []string{"http://localhost:5173"}
	}
	metrics := telemetry.New("test", prometheus.NewRegistry())
	srv := httptest.NewServer(New(cfg, metrics, nil).Handler())
	t.Cleanup(srv.Close)
	return srv, metrics
}

func TestProxy_Health(t *testing.T) {
	srv, _ := newTestProxy(t, Config{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "proxy-server-running", body["status"])
}

func TestProxy_CORS(t *testing.T) {
	srv, _ := newTestProxy(t, Config{})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/bitcoin-rpc", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Grpc-Metadata-macaroon")
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestProxy_BitcoinRPCForwards(t *testing.T) {
	core := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "polaruser", user)
		assert.Equal(t, "polarpass", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1.0", body["jsonrpc"])
		assert.Equal(t, "getbalance", body["method"])

		_, _ = io.WriteString(w, `{"result":2.25,"error":null,"id":"game"}`)
	}))
	defer core.Close()

	srv, metrics := newTestProxy(t, Config{BitcoinURL: core.URL, BitcoinUser: "polaruser", BitcoinPass: "polarpass"})

	resp, err := http.Post(srv.URL+"/bitcoin-rpc", "application/json", strings.NewReader(`{"method":"getbalance"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2.25, body["result"])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProxyRequests.WithLabelValues("/bitcoin-rpc", "ok")))
}

func TestProxy_BitcoinRPCMockFallback(t *testing.T) {
	srv, metrics := newTestProxy(t, Config{BitcoinURL: deadURL(t)})

	resp, err := http.Post(srv.URL+"/bitcoin-rpc", "application/json", strings.NewReader(`{"method":"getblockchaininfo","params":[]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body struct {
		Error  string         `json:"error"`
		Mock   bool           `json:"mock"`
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Mock)
	assert.Equal(t, "Failed to connect to Bitcoin Core", body.Error)
	assert.Equal(t, "regtest", body.Result["chain"])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProxyRequests.WithLabelValues("/bitcoin-rpc", "mock")))
}

func TestProxy_BitcoinRPCBadBody(t *testing.T) {
	srv, _ := newTestProxy(t, Config{})

	resp, err := http.Post(srv.URL+"/bitcoin-rpc", "application/json", strings.NewReader(`{`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProxy_LNDForwards(t *testing.T) {
	lnd := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Grpc-Metadata-macaroon"))
		assert.Equal(t, "/v1/invoice/abc", r.URL.Path)
		_, _ = io.WriteString(w, `{"settled":false,"state":"OPEN"}`)
	}))
	defer lnd.Close()

	srv, _ := newTestProxy(t, Config{LNDURL: lnd.URL, LNDMacaroon: "secret"})

	resp, err := http.Get(srv.URL + "/lnd-api/v1/invoice/abc")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var st bitcoin.InvoiceState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&st))
	assert.Equal(t, "OPEN", st.State)
}

func TestProxy_LNDMockFallback(t *testing.T) {
	srv, _ := newTestProxy(t, Config{LNDURL: deadURL(t)})

	resp, err := http.Post(srv.URL+"/lnd-api/v1/invoices", "application/json", strings.NewReader(`{"value":1000}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body struct {
		Mock   bool            `json:"mock"`
		Result bitcoin.Invoice `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Mock)
	assert.NotEmpty(t, body.Result.RHash)
}

func TestProxy_Metrics(t *testing.T) {
	srv, metrics := newTestProxy(t, Config{})
	metrics.FrameFailed()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test_frame_errors_total 1")
}

func TestProxy_ClientsDegradeThroughProxy(t *testing.T) {
	dead := deadURL(t)
	srv, _ := newTestProxy(t, Config{BitcoinURL: dead, LNDURL: dead})
	ctx := context.Background()

	core := bitcoin.NewCoreClient(srv.URL, 0, nil)
	assert.False(t, core.Connect(ctx))
	sats, degraded := core.GetBalance(ctx, "bcrt1qplayer")
	assert.True(t, degraded)
	assert.Equal(t, int64(bitcoin.SatsPerBTC), sats)

	ln := bitcoin.NewLightningClient(srv.URL, 0, nil)
	assert.False(t, ln.Connect(ctx))
}
