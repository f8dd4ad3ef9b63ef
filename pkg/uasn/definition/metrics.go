package definition

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes simulation activity counters through a prometheus
// registry, satisfying core.Metrics by structural typing (this package
// does not import core, to avoid a cycle).
type Metrics struct {
	ticks      prometheus.Counter
	broadcasts prometheus.Counter
	deliveries prometheus.Counter
	drops      prometheus.Counter
	latency    prometheus.Histogram
}

// NewMetrics registers a fresh set of collectors on reg and returns a
// Metrics wrapping them. Passing a dedicated registry (rather than the
// global one) keeps repeated simulation runs from colliding on
// collector registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uasn_ticks_total",
			Help: "Number of scheduler ticks processed.",
		}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uasn_broadcasts_total",
			Help: "Number of broadcast calls issued by nodes.",
		}),
		deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uasn_deliveries_total",
			Help: "Number of deliveries scheduled by broadcasts.",
		}),
		drops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uasn_drops_total",
			Help: "Number of per-recipient deliveries dropped by simulated acoustic loss.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "uasn_delivery_latency_seconds",
			Help:    "Scheduled propagation delay of accepted deliveries.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.ticks, m.broadcasts, m.deliveries, m.drops, m.latency)
	return m
}

func (m *Metrics) Tick()      { m.ticks.Inc() }
func (m *Metrics) Broadcast() { m.broadcasts.Inc() }
func (m *Metrics) Drop()      { m.drops.Inc() }
func (m *Metrics) Delivery(latencySeconds float64) {
	m.deliveries.Inc()
	m.latency.Observe(latencySeconds)
}
