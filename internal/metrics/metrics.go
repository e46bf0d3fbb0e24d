// Package metrics holds the engine's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Difficulty controller
	DifficultyAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "difficulty_adjustments_total",
			Help: "Difficulty adjustments applied, by direction",
		},
		[]string{"direction"}, // "up", "down", "none"
	)

	DifficultyEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "difficulty_evaluations_total",
			Help: "Telemetry evaluations, by outcome",
		},
		[]string{"outcome"}, // "adjusted", "stabilizing", "no_trigger"
	)

	DifficultyLevel = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "difficulty_level",
			Help:    "Difficulty chosen at session start",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "game_sessions_active",
			Help: "Sessions currently held in the registry",
		},
	)

	// Oracle
	OracleFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_fallbacks_total",
			Help: "Oracle calls answered by heuristics, by call",
		},
		[]string{"call"},
	)

	OracleBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "oracle_circuit_breaker_state",
			Help: "Oracle circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	OracleRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_request_duration_seconds",
			Help:    "Oracle HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call", "status"},
	)

	// Recommendations
	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_generated_total",
			Help: "Recommendations returned, by type",
		},
		[]string{"type"},
	)

	RecommendationConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_confidence",
			Help:    "Confidence of generated recommendation sets",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)

	// Profile cache
	ProfileCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_cache_hits_total",
			Help: "User profile cache hits",
		},
	)

	ProfileCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_cache_misses_total",
			Help: "User profile cache misses",
		},
	)

	// Transport
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Open host websocket connections",
		},
	)
)

// RecordAdjustment counts an applied adjustment by the sign of delta. A zero
// delta is a triggered evaluation held at a bound.
func RecordAdjustment(delta float64) {
	dir := "none"
	switch {
	case delta > 0:
		dir = "up"
	case delta < 0:
		dir = "down"
	}
	DifficultyAdjustments.WithLabelValues(dir).Inc()
	DifficultyEvaluations.WithLabelValues("adjusted").Inc()
}

// RecordHTTPRequest observes one served request.
func RecordHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
