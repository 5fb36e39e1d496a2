package rewards

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rizome-dev/go-rewards/pkg/rubrics"
)

// Metrics records pipeline outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	outcomes     *prometheus.CounterVec
	values       *prometheus.HistogramVec
	batchSeconds prometheus.Histogram
	batchSize    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rewards",
			Name:      "outcomes_total",
			Help:      "Scored and defaulted outcomes per scorer.",
		}, []string{"scorer", "outcome"}),
		values: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rewards",
			Name:      "value",
			Help:      "Distribution of reward values per scorer.",
			Buckets:   []float64{-1, -0.5, 0, 0.5, 1, 1.5, 2},
		}, []string{"scorer"}),
		batchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rewards",
			Name:      "batch_seconds",
			Help:      "Time to score one batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rewards",
			Name:      "batch_size",
			Help:      "Number of completions per batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	for _, c := range []prometheus.Collector{m.outcomes, m.values, m.batchSeconds, m.batchSize} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register reward metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observe(outcomes []rubrics.Outcome) {
	if m == nil {
		return
	}
	for _, o := range outcomes {
		if o.Defaulted {
			m.outcomes.WithLabelValues(o.Scorer, "defaulted").Inc()
			continue
		}
		m.outcomes.WithLabelValues(o.Scorer, "scored").Inc()
		m.values.WithLabelValues(o.Scorer).Observe(o.Value)
	}
}

func (m *Metrics) observeBatch(size int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(size))
	m.batchSeconds.Observe(elapsed.Seconds())
}
