package app

import (
	"cookoff-scoreboard/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes ledger and storage counters. A nil *Metrics is a no-op.
type Metrics struct {
	mutations       *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
	legacyPurged    prometheus.Counter
	ledgerEntries   prometheus.Gauge
}

// NewMetrics creates the scoreboard metrics on reg. A nil registerer yields
// working but unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreboard_ledger_mutations_total",
				Help: "Ledger mutations applied, by operation.",
			},
			[]string{"operation"},
		),
		storageFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scoreboard_storage_failures_total",
				Help: "Durable store failures recovered locally, by operation.",
			},
			[]string{"operation"},
		),
		legacyPurged: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "scoreboard_legacy_keys_purged_total",
				Help: "Obsolete roster keys removed from the durable store.",
			},
		),
		ledgerEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "scoreboard_ledger_entries",
				Help: "Number of score entries currently held in the ledger.",
			},
		),
	}
}

func (m *Metrics) mutation(op string, size int) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
	m.ledgerEntries.Set(float64(size))
}

func (m *Metrics) storageFailure(op domain.StorageOp) {
	if m == nil {
		return
	}
	m.storageFailures.WithLabelValues(string(op)).Inc()
}

func (m *Metrics) purged() {
	if m == nil {
		return
	}
	m.legacyPurged.Inc()
}

func (m *Metrics) size(n int) {
	if m == nil {
		return
	}
	m.ledgerEntries.Set(float64(n))
}
