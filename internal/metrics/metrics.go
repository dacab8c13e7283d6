// Package metrics exposes Prometheus collectors for the simulation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"contract-ca/internal/sims/validation"
)

// Sink names used in the sink_* series.
const (
	SinkSnapshot  = "snapshot"
	SinkBroadcast = "broadcast"
)

// Metrics groups every collector. Construct it once per registry.
type Metrics struct {
	Generations  prometheus.Counter
	StepDuration prometheus.Histogram
	Alive        prometheus.Gauge
	Births       prometheus.Counter
	Deaths       prometheus.Counter
	Transitions  *prometheus.CounterVec
	Patterns     *prometheus.GaugeVec
	SinkErrors   *prometheus.CounterVec
	SinkDropped  *prometheus.CounterVec
}

// New registers the collectors with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Generations: f.NewCounter(prometheus.CounterOpts{
			Name: "contract_ca_generations_total",
			Help: "Completed generations",
		}),
		StepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "contract_ca_step_duration_seconds",
			Help:    "Wall time of one generation step",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		Alive: f.NewGauge(prometheus.GaugeOpts{
			Name: "contract_ca_alive_cells",
			Help: "Cells with state at least ALIVE after the last step",
		}),
		Births: f.NewCounter(prometheus.CounterOpts{
			Name: "contract_ca_births_total",
			Help: "DEAD to SPAWNING transitions",
		}),
		Deaths: f.NewCounter(prometheus.CounterOpts{
			Name: "contract_ca_deaths_total",
			Help: "Transitions into DYING plus spawn timeouts",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contract_ca_transitions_total",
			Help: "Cell transitions by source and target state",
		}, []string{"from", "to"}),
		Patterns: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "contract_ca_patterns",
			Help: "Pattern instances found in the last generation by kind",
		}, []string{"kind"}),
		SinkErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contract_ca_sink_errors_total",
			Help: "Failed deliveries by sink",
		}, []string{"sink"}),
		SinkDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contract_ca_sink_dropped_total",
			Help: "Events dropped from full sink queues",
		}, []string{"sink"}),
	}
}

// ObserveStep records one completed generation.
func (m *Metrics) ObserveStep(res validation.StepResult) {
	if m == nil {
		return
	}
	rec := res.Record
	m.Generations.Inc()
	m.StepDuration.Observe(rec.Duration.Seconds())
	m.Alive.Set(float64(rec.Stats.TotalAlive))
	m.Births.Add(float64(rec.Stats.Births))
	m.Deaths.Add(float64(rec.Stats.Deaths))
	for _, c := range res.Changes {
		m.Transitions.WithLabelValues(c.From.String(), c.To.String()).Inc()
	}
	m.Patterns.WithLabelValues(string(validation.KindStillLife)).Set(float64(len(res.Report.Static)))
	m.Patterns.WithLabelValues(string(validation.KindOscillator)).Set(float64(len(res.Report.Oscillators)))
	m.Patterns.WithLabelValues(string(validation.KindMover)).Set(float64(len(res.Report.Movers)))
}

// SinkError counts a failed delivery.
func (m *Metrics) SinkError(sink string) {
	if m == nil {
		return
	}
	m.SinkErrors.WithLabelValues(sink).Inc()
}

// SinkDrop counts an event evicted from a full queue.
func (m *Metrics) SinkDrop(sink string) {
	if m == nil {
		return
	}
	m.SinkDropped.WithLabelValues(sink).Inc()
}
