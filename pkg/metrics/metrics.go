package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are millisecond buckets tuned for provider round trips
// (typically 200ms-2s, with a long tail on checkout preference creation).
var HistogramBuckets = []float64{
	25, 50, 100, 200, 300, 500,
	750, 1000, 1500, 2000,
	3000, 5000, 7500, 10000, 15000, 30000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "counter":
		return prometheus.NewCounter(prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description})
	case "gauge_vec":
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets}, m.Args)
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description}, m.Args)
	}
	return nil
}

var metricPurchaseInitiated = &Metric{
	ID:          "purchaseInit",
	Name:        "purchase_initiated_total",
	Description: "Purchases initiated, partitioned by funding source and outcome.",
	Type:        "counter_vec",
	Args:        []string{"funding", "outcome"},
}

var metricReconcile = &Metric{
	ID:          "reconcile",
	Name:        "reconcile_total",
	Description: "Reconciliation attempts, partitioned by signal source and outcome.",
	Type:        "counter_vec",
	Args:        []string{"source", "outcome"},
}

var metricProviderCall = &Metric{
	ID:          "providerDur",
	Name:        "provider_call_dur_ms",
	Description: "Payment provider call latency in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"op", "result"},
}

// Business holds the settlement counters. A nil *Business is a no-op so
// services can be built in tests without a registry.
type Business struct {
	purchaseInitiated *prometheus.CounterVec
	reconcile         *prometheus.CounterVec
	providerCall      *prometheus.HistogramVec
}

// NewBusiness registers the settlement metrics on reg. Registration errors
// (e.g. duplicates across fx restarts in tests) fall back to the already
// registered collector.
func NewBusiness(reg prometheus.Registerer) *Business {
	b := &Business{}
	b.purchaseInitiated = register(reg, metricPurchaseInitiated).(*prometheus.CounterVec)
	b.reconcile = register(reg, metricReconcile).(*prometheus.CounterVec)
	b.providerCall = register(reg, metricProviderCall).(*prometheus.HistogramVec)
	return b
}

func register(reg prometheus.Registerer, m *Metric) prometheus.Collector {
	c := NewMetric(m, "settlement")
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			c = are.ExistingCollector
		}
	}
	m.MetricCollector = c
	return c
}

func (b *Business) PurchaseInitiated(funding, outcome string) {
	if b == nil {
		return
	}
	b.purchaseInitiated.WithLabelValues(funding, outcome).Inc()
}

func (b *Business) Reconciled(source, outcome string) {
	if b == nil {
		return
	}
	b.reconcile.WithLabelValues(source, outcome).Inc()
}

func (b *Business) ProviderCall(op string, start time.Time, err error) {
	if b == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	b.providerCall.WithLabelValues(op, result).Observe(MillisecondsSince(start))
}

// MillisecondsSince returns the elapsed time in fractional milliseconds.
func MillisecondsSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}

const (
	RefererKey = "X-Referer"
)
