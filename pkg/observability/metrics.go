// Package observability exposes Prometheus metrics for the pipeline's
// operations.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the instrumentation for train/predict/confirm operations
type Metrics struct {
	TrainTotal     *prometheus.CounterVec
	PredictTotal   *prometheus.CounterVec
	ConfirmTotal   prometheus.Counter
	OpDuration     *prometheus.HistogramVec
	DatasetsActive prometheus.Gauge
}

// New registers the pipeline metrics on a registry. Pass a fresh registry
// in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TrainTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exoscan_train_total",
			Help: "Training runs by schema and outcome",
		}, []string{"schema", "outcome"}),
		PredictTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "exoscan_predict_total",
			Help: "Prediction calls by outcome",
		}, []string{"outcome"}),
		ConfirmTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "exoscan_confirm_total",
			Help: "Confirmation analysis calls",
		}),
		OpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exoscan_operation_duration_seconds",
			Help:    "Duration of pipeline operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		DatasetsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "exoscan_datasets_active",
			Help: "Datasets currently held in the upload registry",
		}),
	}
}
