// Package metrics provides Prometheus instrumentation for the session store.
// It exposes counters for loads, saves and sweeps, and a gauge for the number
// of tracked session identifiers.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/txn2/memsession/pkg/session"
)

const namespace = "memsession"

// Collector implements session.Metrics on top of Prometheus collectors.
type Collector struct {
	// Loads counts Load calls, labeled by result: "hit" when at least one
	// live entry was found, "miss" otherwise.
	Loads *prometheus.CounterVec

	// Saves counts Save calls that wrote entries, labeled by identifier:
	// "minted" or "reused".
	Saves *prometheus.CounterVec

	// KeysWritten counts entries written by Save.
	KeysWritten prometheus.Counter

	// Cleanups counts completed sweeps.
	Cleanups prometheus.Counter

	// KeysExpired counts entries removed by the sweeper.
	KeysExpired prometheus.Counter

	// SessionsRemoved counts identifiers dropped by the sweeper.
	SessionsRemoved prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Total number of session loads",
		}, []string{"result"}), // result = "hit", "miss"
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Total number of session saves that wrote entries",
		}, []string{"identifier"}), // identifier = "minted", "reused"
		KeysWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_written_total",
			Help:      "Total number of session entries written",
		}),
		Cleanups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanups_total",
			Help:      "Total number of expired entry sweeps",
		}),
		KeysExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_expired_total",
			Help:      "Total number of expired session entries swept",
		}),
		SessionsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_removed_total",
			Help:      "Total number of empty session identifiers swept",
		}),
	}

	reg.MustRegister(
		c.Loads,
		c.Saves,
		c.KeysWritten,
		c.Cleanups,
		c.KeysExpired,
		c.SessionsRemoved,
	)
	return c
}

// ObserveLoad implements session.Metrics.
func (c *Collector) ObserveLoad(found bool, _ int) {
	if found {
		c.Loads.WithLabelValues("hit").Inc()
		return
	}
	c.Loads.WithLabelValues("miss").Inc()
}

// ObserveSave implements session.Metrics.
func (c *Collector) ObserveSave(minted bool, keys int) {
	if minted {
		c.Saves.WithLabelValues("minted").Inc()
	} else {
		c.Saves.WithLabelValues("reused").Inc()
	}
	c.KeysWritten.Add(float64(keys))
}

// ObserveCleanup implements session.Metrics.
func (c *Collector) ObserveCleanup(expiredKeys, removedSessions int) {
	c.Cleanups.Inc()
	c.KeysExpired.Add(float64(expiredKeys))
	c.SessionsRemoved.Add(float64(removedSessions))
}

// RegisterActiveSessions registers a gauge reporting count() on every scrape.
func RegisterActiveSessions(reg prometheus.Registerer, count func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Current number of tracked session identifiers",
	}, func() float64 {
		return float64(count())
	}))
}

// Handler returns the Prometheus HTTP handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Verify interface compliance.
var _ session.Metrics = (*Collector)(nil)
