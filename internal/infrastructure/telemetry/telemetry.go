// Package telemetry exposes the game's prometheus counters.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the game counters
type Metrics struct {
	SceneTransitions *prometheus.CounterVec
	FrameErrors      prometheus.Counter
	LevelResets      prometheus.Counter
	LevelsCompleted  prometheus.Counter
	DegradedCalls    *prometheus.CounterVec
	ProxyRequests    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the counters and registers them on reg.
// A nil reg uses a private registry.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		SceneTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_transitions_total",
			Help:      "Completed scene switches by target scene kind",
		}, []string{"scene"}),
		FrameErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_errors_total",
			Help:      "Frames whose update or render failed",
		}),
		LevelResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_resets_total",
			Help:      "Level resets started",
		}),
		LevelsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "levels_completed_total",
			Help:      "Levels completed",
		}),
		DegradedCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "economy_degraded_total",
			Help:      "Economy results answered from mock or offline data",
		}, []string{"op"}),
		ProxyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_requests_total",
			Help:      "Proxy requests by route and outcome",
		}, []string{"route", "outcome"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.SceneTransitions,
		m.FrameErrors,
		m.LevelResets,
		m.LevelsCompleted,
		m.DegradedCalls,
		m.ProxyRequests,
	)
	return m
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// SceneEntered counts a switch to the given scene kind
func (m *Metrics) SceneEntered(kind string) {
	m.SceneTransitions.WithLabelValues(kind).Inc()
}

// FrameFailed counts a failed frame
func (m *Metrics) FrameFailed() {
	m.FrameErrors.Inc()
}

// LevelReset counts a level reset
func (m *Metrics) LevelReset() {
	m.LevelResets.Inc()
}

// LevelCompleted counts a completed level
func (m *Metrics) LevelCompleted() {
	m.LevelsCompleted.Inc()
}

// Degraded counts a degraded economy result
func (m *Metrics) Degraded(op string) {
	m.DegradedCalls.WithLabelValues(op).Inc()
}

// ProxyRequest counts a proxied request
func (m *Metrics) ProxyRequest(route, outcome string) {
	m.ProxyRequests.WithLabelValues(route, outcome).Inc()
}
