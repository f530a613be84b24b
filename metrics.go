package skemaref

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	fetches       *prometheus.CounterVec
	coalesced     prometheus.Counter
	fetchDuration prometheus.Histogram
	submitted     *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skemaref_fetches_total",
				Help: "Number of remote schema fetches by outcome",
			},
			[]string{"outcome"},
		),
		coalesced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "skemaref_coalesced_total",
				Help: "Number of resolutions that waited on a fetch already in flight",
			},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name: "skemaref_fetch_duration_seconds",
				Help: "Duration in seconds of remote schema fetches",
			},
		),
		submitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skemaref_documents_submitted_total",
				Help: "Number of documents registered, by store",
			},
			[]string{"store"},
		),
	}
	if reg != nil {
		m.fetches = register(reg, m.fetches)
		m.coalesced = register(reg, m.coalesced)
		m.fetchDuration = register(reg, m.fetchDuration)
		m.submitted = register(reg, m.submitted)
	}
	return m
}

// register adopts an already registered collector so several resolvers can
// share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
