package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AddressesRegistered prometheus.Counter
	AddressesRemoved    prometheus.Counter
	ManifestFetches     *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AddressesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lnaddrd_addresses_registered_total",
			Help: "Total number of payment addresses registered",
		}),
		AddressesRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lnaddrd_addresses_removed_total",
			Help: "Total number of payment addresses removed",
		}),
		ManifestFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lnaddrd_manifest_fetches_total",
			Help: "Outbound LNURL manifest fetches by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementRegistered increments the registered-addresses counter by 1.
func (m *Metrics) IncrementRegistered() {
	if m == nil {
		return
	}
	m.AddressesRegistered.Inc()
}

// IncrementRemoved increments the removed-addresses counter by 1.
func (m *Metrics) IncrementRemoved() {
	if m == nil {
		return
	}
	m.AddressesRemoved.Inc()
}

// RecordManifestFetch records one outbound fetch with the given outcome
// ("ok", "transport_error" or "wrong_kind").
func (m *Metrics) RecordManifestFetch(outcome string) {
	if m == nil {
		return
	}
	m.ManifestFetches.WithLabelValues(outcome).Inc()
}
