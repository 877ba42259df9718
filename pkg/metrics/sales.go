package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics records completed register sales.
type SaleMetrics struct {
	recorded *prometheus.CounterVec
	amount   prometheus.Histogram
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_recorded_total",
		Help: "Register sales recorded by payment method.",
	}, []string{"payment_method"})
	amount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sale_total_amount",
		Help:    "Sale totals in store currency.",
		Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
	})
	reg.MustRegister(recorded, amount)
	return &SaleMetrics{recorded: recorded, amount: amount}
}

// ObserveSale counts a recorded sale and its total.
func (s *SaleMetrics) ObserveSale(paymentMethod string, total float64) {
	if s == nil || s.recorded == nil {
		return
	}
	s.recorded.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
	s.amount.Observe(total)
}
