// Package metrics exposes Prometheus metrics for the record store.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/student-records/internal/validation"
)

const (
	resultSuccess = "success"
	resultInvalid = "invalid"
	resultError   = "error"
)

// Metrics holds the store's collectors. A nil *Metrics is valid and
// records nothing, so callers never need to check for it.
type Metrics struct {
	registry *prometheus.Registry

	operationsTotal *prometheus.CounterVec
	records         prometheus.Gauge
}

// New creates the collectors on a registry of their own, so several stores
// (tests, for one) can coexist in a process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "student_records_store_operations_total",
				Help: "Total number of store operations by result",
			},
			[]string{"op", "result"},
		),
		records: factory.NewGauge(prometheus.GaugeOpts{
			Name: "student_records_records",
			Help: "Number of records currently held by the store",
		}),
	}
}

// ObserveOp counts one operation. Validation failures are counted apart
// from other errors.
func (m *Metrics) ObserveOp(op string, err error) {
	if m == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
		var verr *validation.ValidationError
		if errors.As(err, &verr) {
			result = resultInvalid
		}
	}
	m.operationsTotal.WithLabelValues(op, result).Inc()
}

// SetRecords updates the record count gauge.
func (m *Metrics) SetRecords(n int) {
	if m == nil {
		return
	}
	m.records.Set(float64(n))
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
