// Package observability provides Prometheus metrics for the resolver.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "pair_resolver"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scheduler metrics
	BatchesDispatched prometheus.Counter
	CallsDispatched   prometheus.Counter
	CallsCoalesced    prometheus.Counter
	CallsEvicted      prometheus.Counter
	DispatchErrors    prometheus.Counter
	DispatchDuration  prometheus.Histogram
	PendingCalls      prometheus.Gauge

	// Resolution metrics
	PassesTotal        prometheus.Counter
	PairStates         *prometheus.CounterVec
	TokenOrderMismatch prometheus.Counter

	// Storage metrics
	StoreErrors *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates a Metrics instance registered on reg.
// A nil reg registers on a fresh private registry.
func NewMetrics(reg *prometheus.Registry, namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		BatchesDispatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "multicall",
			Name:      "batches_dispatched_total",
			Help:      "Total number of aggregate calls sent to the node",
		}),
		CallsDispatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "multicall",
			Name:      "calls_dispatched_total",
			Help:      "Total number of contract calls packed into aggregate calls",
		}),
		CallsCoalesced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "multicall",
			Name:      "calls_coalesced_total",
			Help:      "Total number of submitted calls served by an existing entry",
		}),
		CallsEvicted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "multicall",
			Name:      "calls_evicted_total",
			Help:      "Total number of call entries dropped from the scheduler cache",
		}),
		DispatchErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "multicall",
			Name:      "dispatch_errors_total",
			Help:      "Total number of aggregate calls that failed at transport level",
		}),
		DispatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "multicall",
			Name:      "dispatch_duration_seconds",
			Help:      "Latency of aggregate calls",
			Buckets:   prometheus.DefBuckets,
		}),
		PendingCalls: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "multicall",
			Name:      "pending_calls",
			Help:      "Calls waiting for the next dispatch",
		}),

		PassesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pairs",
			Name:      "passes_total",
			Help:      "Total number of resolution passes",
		}),
		PairStates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pairs",
			Name:      "states_total",
			Help:      "Settled pair states by state",
		}, []string{"state"}),
		TokenOrderMismatch: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pairs",
			Name:      "token_order_mismatch_total",
			Help:      "Pairs whose on-chain token0 differs from the locally sorted token0",
		}),

		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Result store failures by operation",
		}, []string{"op"}),

		gatherer: reg,
	}
}

// Handler returns the HTTP handler exposing these metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
