// Package proxy is the development CORS proxy between the game and the
// Bitcoin Core / LND nodes. When a node cannot be reached the proxy answers
// with HTTP 500 and a mock result flagged "mock": true.
package proxy

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/younwookim/hollowhouse/internal/infrastructure/bitcoin"
	"github.com/younwookim/hollowhouse/internal/infrastructure/telemetry"
)

// Config configures the proxy
type Config struct {
	Listen       string
	AllowOrigins []string
	BitcoinURL   string
	BitcoinUser  string
	BitcoinPass  string
	LNDURL       string
	LNDMacaroon  string
	Timeout      time.Duration
}

// DevMacaroon is sent when no macaroon is configured
const DevMacaroon = "mock_macaroon_for_development"

// Server proxies RPC and REST calls with CORS headers
type Server struct {
	cfg     Config
	metrics *telemetry.Metrics
	log     *zap.SugaredLogger

	bitcoin *http.Client
	lnd     *http.Client
}

// New creates a proxy server. metrics may be nil.
func New(cfg Config, metrics *telemetry.Metrics, log *zap.SugaredLogger) *Server {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.LNDMacaroon == "" {
		cfg.LNDMacaroon = DevMacaroon
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	// LND serves a self-signed certificate in development
	lndTransport := http.DefaultTransport.(*http.Transport).Clone()
	lndTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec

	return &Server{
		cfg:     cfg,
		metrics: metrics,
		log:     log,
		bitcoin: &http.Client{Timeout: cfg.Timeout},
		lnd:     &http.Client{Timeout: cfg.Timeout, Transport: lndTransport},
	}
}

// Handler returns the routed handler with CORS applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /bitcoin-rpc", s.handleBitcoinRPC)
	mux.HandleFunc("GET /lnd-api/v1/getinfo", s.lndRoute("/v1/getinfo"))
	mux.HandleFunc("POST /lnd-api/v1/invoices", s.lndRoute("/v1/invoices"))
	mux.HandleFunc("GET /lnd-api/v1/invoice/{hash}", func(w http.ResponseWriter, r *http.Request) {
		s.proxyLND(w, r, "/v1/invoice/"+r.PathValue("hash"))
	})
	mux.HandleFunc("GET /lnd-api/v1/balance/channels", s.lndRoute("/v1/balance/channels"))
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return s.cors(mux)
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("proxy listening", "addr", s.cfg.Listen, "bitcoin", s.cfg.BitcoinURL, "lnd", s.cfg.LNDURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && slices.Contains(s.cfg.AllowOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Grpc-Metadata-macaroon")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "proxy-server-running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type rpcCall struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type mockReply struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Mock    bool   `json:"mock"`
	Result  any    `json:"result"`
}

func (s *Server) handleBitcoinRPC(w http.ResponseWriter, r *http.Request) {
	var call rpcCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if call.Params == nil {
		call.Params = []any{}
	}

	s.log.Debugw("proxying bitcoin rpc", "method", call.Method)
	body, err := s.forwardRPC(r.Context(), call)
	if err != nil {
		s.log.Warnw("bitcoin rpc proxy failed", "method", call.Method, "error", err)
		s.count("/bitcoin-rpc", "mock")
		writeJSON(w, http.StatusInternalServerError, mockReply{
			Error:   "Failed to connect to Bitcoin Core",
			Details: err.Error(),
			Mock:    true,
			Result:  json.RawMessage(bitcoin.MockResult(call.Method, call.Params)),
		})
		return
	}

	s.count("/bitcoin-rpc", "ok")
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (s *Server) forwardRPC(ctx context.Context, call rpcCall) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"jsonrpc": "1.0",
		"id":      "game",
		"method":  call.Method,
		"params":  call.Params,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BitcoinURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.cfg.BitcoinUser, s.cfg.BitcoinPass)

	return s.do(s.bitcoin, req, "bitcoin core")
}

func (s *Server) lndRoute(endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.proxyLND(w, r, endpoint)
	}
}

func (s *Server) proxyLND(w http.ResponseWriter, r *http.Request, endpoint string) {
	s.log.Debugw("proxying lnd call", "method", r.Method, "endpoint", endpoint)

	var body io.Reader
	if r.Method == http.MethodPost {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, strings.TrimRight(s.cfg.LNDURL, "/")+endpoint, body)
	if err == nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Grpc-Metadata-macaroon", s.cfg.LNDMacaroon)
	}

	var data []byte
	if err == nil {
		data, err = s.do(s.lnd, req, "lnd")
	}
	if err != nil {
		s.log.Warnw("lnd proxy failed", "endpoint", endpoint, "error", err)
		s.count("/lnd-api", "mock")
		writeJSON(w, http.StatusInternalServerError, mockReply{
			Error:   "Failed to connect to LND",
			Details: err.Error(),
			Mock:    true,
			Result:  bitcoin.MockLND(endpoint),
		})
		return
	}

	s.count("/lnd-api", "ok")
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) do(client *http.Client, req *http.Request, name string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s responded with status: %d", name, resp.StatusCode)
	}
	return data, nil
}

func (s *Server) count(route, outcome string) {
	if s.metrics != nil {
		s.metrics.ProxyRequest(route, outcome)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
