package cache

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ListenerMetrics tracks listener-level counters. Values are observability
// only — no behavior in this package reads them back, per the "handlers
// may emit debug traces; they are not a contract" rule.
type ListenerMetrics struct {
	received      int64
	dispatched    int64
	ignored       int64
	selfFiltered  int64
	pausedDropped int64
	parseFailed   int64
}

// NewListenerMetrics creates a zeroed metrics tracker.
func NewListenerMetrics() *ListenerMetrics {
	return &ListenerMetrics{}
}

func (m *ListenerMetrics) recordReceived()      { atomic.AddInt64(&m.received, 1) }
func (m *ListenerMetrics) recordDispatched()    { atomic.AddInt64(&m.dispatched, 1) }
func (m *ListenerMetrics) recordIgnored()       { atomic.AddInt64(&m.ignored, 1) }
func (m *ListenerMetrics) recordSelfFiltered()  { atomic.AddInt64(&m.selfFiltered, 1) }
func (m *ListenerMetrics) recordPausedDropped() { atomic.AddInt64(&m.pausedDropped, 1) }
func (m *ListenerMetrics) recordParseFailed()   { atomic.AddInt64(&m.parseFailed, 1) }

// Received returns the total number of notifications handed to the listener.
func (m *ListenerMetrics) Received() int64 { return atomic.LoadInt64(&m.received) }

// Dispatched returns the number of notifications that matched an
// invalidation-table entry and were handed to the registered databases'
// stores; it counts them whether or not any store entry was present.
func (m *ListenerMetrics) Dispatched() int64 { return atomic.LoadInt64(&m.dispatched) }

// Ignored returns the number of notifications that produced no mutation
// because their event name fell outside the invalidation table for their
// channel or their event argument was malformed.
func (m *ListenerMetrics) Ignored() int64 { return atomic.LoadInt64(&m.ignored) }

// SelfFiltered returns the number of detailed-channel notifications
// dropped because their originator matched this process's identity.
func (m *ListenerMetrics) SelfFiltered() int64 { return atomic.LoadInt64(&m.selfFiltered) }

// PausedDropped returns the number of notifications dropped while paused.
func (m *ListenerMetrics) PausedDropped() int64 { return atomic.LoadInt64(&m.pausedDropped) }

// ParseFailed returns the number of notifications dropped before table
// lookup because their channel did not carry the expected keyspace prefix.
func (m *ListenerMetrics) ParseFailed() int64 { return atomic.LoadInt64(&m.parseFailed) }

// promMetrics mirrors the dispatched, ignored and self-filtered outcomes of
// ListenerMetrics into Prometheus; received, paused-dropped and
// parse-failed counts are not mirrored. Registered once per process via
// promauto, matching the teacher's concurrency-metrics-via-promauto idiom;
// a nil *promMetrics (the default) means no Prometheus registration happens
// and callers only get the atomic counters above.
type promMetrics struct {
	eventsTotal *prometheus.CounterVec
}

var (
	promMetricsOnce sync.Once
	promMetricsInst *promMetrics
)

// newPromMetrics lazily registers the Prometheus collectors exactly once
// per process, returning the shared instance on every call.
func newPromMetrics() *promMetrics {
	promMetricsOnce.Do(func() {
		promMetricsInst = &promMetrics{
			eventsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stackredis_l1_listener_events_total",
					Help: "Keyspace notifications processed by the L1 invalidation listener, by outcome.",
				},
				[]string{"outcome"},
			),
		}
	})
	return promMetricsInst
}

func (p *promMetrics) observe(outcome string) {
	if p == nil {
		return
	}
	p.eventsTotal.WithLabelValues(outcome).Inc()
}
