package telemetry

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("hollow", prometheus.NewRegistry())

	m.SceneEntered("level")
	m.SceneEntered("level")
	m.SceneEntered("mainMenu")
	m.FrameFailed()
	m.LevelReset()
	m.LevelCompleted()
	m.Degraded("reward")
	m.ProxyRequest("/bitcoin-rpc", "mock")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SceneTransitions.WithLabelValues("level")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FrameErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LevelResets))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LevelsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DegradedCalls.WithLabelValues("reward")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProxyRequests.WithLabelValues("/bitcoin-rpc", "mock")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New("hollow", nil)
	m.FrameFailed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "hollow_frame_errors_total 1")
}
