// Package metrics defines the Prometheus collectors for the settlement engine
// and the RPC layer. Every method is safe to call on a nil receiver so callers
// can run without metrics (tests, CLI).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "outlate"

// Engine holds the calculator collectors.
type Engine struct {
	allocations         *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
	consistencyFailures *prometheus.CounterVec
	settlementSize      prometheus.Histogram
}

// NewEngine registers the engine collectors on reg.
func NewEngine(reg prometheus.Registerer) *Engine {
	f := promauto.With(reg)
	return &Engine{
		allocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "allocations_total",
			Help:      "Receipts allocated, by split method.",
		}, []string{"split_method"}),
		validationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "validation_failures_total",
			Help:      "Inputs rejected by the validator, by offending field.",
		}, []string{"field"}),
		consistencyFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "consistency_failures_total",
			Help:      "Internal invariant violations, by check. Any non-zero value is a defect.",
		}, []string{"check"}),
		settlementSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "settlement_transactions",
			Help:      "Number of transactions per computed settlement plan.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
	}
}

func (m *Engine) Allocated(splitMethod string) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(splitMethod).Inc()
}

func (m *Engine) ValidationFailed(field string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(field).Inc()
}

func (m *Engine) ConsistencyFailed(check string) {
	if m == nil {
		return
	}
	m.consistencyFailures.WithLabelValues(check).Inc()
}

func (m *Engine) SettlementComputed(transactions int) {
	if m == nil {
		return
	}
	m.settlementSize.Observe(float64(transactions))
}

// RPC holds the per-procedure request collectors.
type RPC struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRPC registers the RPC collectors on reg.
func NewRPC(reg prometheus.Registerer) *RPC {
	f := promauto.With(reg)
	return &RPC{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "RPCs handled, by procedure and Connect code.",
		}, []string{"procedure", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "duration_seconds",
			Help:      "RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}
}

// Observe records one finished RPC.
func (m *RPC) Observe(procedure, code string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(procedure, code).Inc()
	m.duration.WithLabelValues(procedure).Observe(seconds)
}
