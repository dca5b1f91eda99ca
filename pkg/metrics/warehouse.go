package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WarehouseMetrics records stock movements and fulfillment outcomes.
type WarehouseMetrics struct {
	stockOps        *prometheus.CounterVec
	fulfillments    *prometheus.CounterVec
	fulfillDuration *prometheus.HistogramVec
}

// NewWarehouseMetrics registers the warehouse metrics on the provided registerer.
func NewWarehouseMetrics(reg prometheus.Registerer) *WarehouseMetrics {
	if reg == nil {
		return &WarehouseMetrics{}
	}
	stockOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_operations_total",
		Help: "Stock ledger mutations by operation.",
	}, []string{"operation"})
	fulfillments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_fulfillments_total",
		Help: "Order fulfillment attempts by outcome.",
	}, []string{"outcome"})
	fulfillDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_fulfillment_duration_seconds",
		Help:    "Duration of fulfillment attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(stockOps, fulfillments, fulfillDuration)
	return &WarehouseMetrics{
		stockOps:        stockOps,
		fulfillments:    fulfillments,
		fulfillDuration: fulfillDuration,
	}
}

// IncStockOp increments the counter for the named stock operation.
func (w *WarehouseMetrics) IncStockOp(operation string) {
	if w == nil || w.stockOps == nil {
		return
	}
	w.stockOps.WithLabelValues(normalizeLabel(operation)).Inc()
}

// ObserveFulfillment records one fulfillment attempt with its outcome and duration.
func (w *WarehouseMetrics) ObserveFulfillment(outcome string, duration time.Duration) {
	if w == nil || w.fulfillments == nil {
		return
	}
	label := normalizeLabel(outcome)
	w.fulfillments.WithLabelValues(label).Inc()
	w.fulfillDuration.WithLabelValues(label).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
