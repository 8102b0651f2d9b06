package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ledger writes and dashboard aggregation cost.
// Methods on a nil *Metrics do nothing.
type Metrics struct {
	LedgersInitialized   prometheus.Counter
	PaymentStatusChanges *prometheus.CounterVec
	StatsComputeDuration prometheus.Histogram
	RolloverLedgers      *prometheus.CounterVec
}

// New registers the fee metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LedgersInitialized: factory.NewCounter(prometheus.CounterOpts{
			Name: "fees_ledgers_initialized_total",
			Help: "Total number of fee ledgers created",
		}),
		PaymentStatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fees_payment_status_changes_total",
			Help: "Total number of payment slot status updates",
		}, []string{"paid"}),
		StatsComputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fees_stats_compute_seconds",
			Help:    "Duration of dashboard stats computation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		RolloverLedgers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fees_rollover_ledgers_total",
			Help: "Ledgers handled by the yearly rollover, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementLedgersInitialized() {
	if m == nil {
		return
	}
	m.LedgersInitialized.Inc()
}

func (m *Metrics) IncrementPaymentStatusChange(paid bool) {
	if m == nil {
		return
	}
	m.PaymentStatusChanges.WithLabelValues(strconv.FormatBool(paid)).Inc()
}

// ObserveStatsCompute records the duration of a stats computation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveStatsCompute(start time.Time) {
	if m == nil {
		return
	}
	m.StatsComputeDuration.Observe(time.Since(start).Seconds())
}

// AddRollover records rollover outcomes: created, skipped or failed.
func (m *Metrics) AddRollover(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RolloverLedgers.WithLabelValues(outcome).Add(float64(n))
}
