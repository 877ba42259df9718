package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart and register engine activity.
type CartMetrics struct {
	operations  *prometheus.CounterVec
	persistence *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart engine operations by surface, operation and result.",
	}, []string{"surface", "operation", "result"})
	persistence := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persistence_failures_total",
		Help: "Cart state loads or saves that degraded to in-memory state.",
	}, []string{"surface", "operation"})
	reg.MustRegister(operations, persistence)
	return &CartMetrics{
		operations:  operations,
		persistence: persistence,
	}
}

// ObserveOperation counts one engine operation outcome.
func (c *CartMetrics) ObserveOperation(surface, operation, result string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(surface), normalizeLabel(operation), normalizeLabel(result)).Inc()
}

// IncPersistenceFailure counts a failed load or save.
func (c *CartMetrics) IncPersistenceFailure(surface, operation string) {
	if c == nil || c.persistence == nil {
		return
	}
	c.persistence.WithLabelValues(normalizeLabel(surface), normalizeLabel(operation)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
