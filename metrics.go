package randomid

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by an Engine and its
// Sequences.  A nil *Metrics records nothing.
type Metrics struct {
	permutations    prometheus.Counter
	extraWalks      prometheus.Histogram
	mixingFailures  prometheus.Counter
	sequenceEmitted prometheus.Counter
}

// NewMetrics creates unregistered collectors under the given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		permutations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "permutations_total",
			Help:      "Total number of successful Permute calls",
		}),
		extraWalks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cycle_walks",
			Help:      "Extra Feistel passes needed to land inside the domain",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 64},
		}),
		mixingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "mixing_failures_total",
			Help:      "Permute calls that exceeded the cycle-walking bound",
		}),
		sequenceEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequence",
			Name:      "emitted_total",
			Help:      "Total number of IDs produced by sequences",
		}),
	}
}

// Collectors returns every collector, for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.permutations, m.extraWalks, m.mixingFailures, m.sequenceEmitted}
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) observePermute(extraWalks uint64) {
	if m == nil {
		return
	}
	m.permutations.Inc()
	m.extraWalks.Observe(float64(extraWalks))
}

func (m *Metrics) observeMixingFailure() {
	if m == nil {
		return
	}
	m.mixingFailures.Inc()
}

func (m *Metrics) observeEmitted() {
	if m == nil {
		return
	}
	m.sequenceEmitted.Inc()
}
