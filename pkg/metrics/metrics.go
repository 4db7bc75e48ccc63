package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Record store metrics
	StoreMutations      *prometheus.CounterVec
	PatientsTotal       prometheus.Gauge
	VisitsTotal         prometheus.Gauge
	PersistenceFailures *prometheus.CounterVec

	// Storage adapter metrics
	StorageOperations *prometheus.CounterVec
	StorageLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		StoreMutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Total number of record store mutations",
		}, []string{"entity", "operation"}),
		PatientsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "patients_total",
			Help:      "Current number of patients held in memory",
		}),
		VisitsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visits_total",
			Help:      "Current number of visits held in memory",
		}),
		PersistenceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Total number of non-fatal storage adapter failures",
		}, []string{"collection"}),
		StorageOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Total number of storage adapter operations",
		}, []string{"backend", "operation", "status"}),
		StorageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Duration of storage adapter operations",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"backend", "operation"}),
	}
}

// NewTestMetrics creates metrics on a private registry so parallel tests do
// not collide on promauto's default registerer.
func NewTestMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		StoreMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Total number of record store mutations",
		}, []string{"entity", "operation"}),
		PatientsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "patients_total",
			Help:      "Current number of patients held in memory",
		}),
		VisitsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visits_total",
			Help:      "Current number of visits held in memory",
		}),
		PersistenceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Total number of non-fatal storage adapter failures",
		}, []string{"collection"}),
		StorageOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operations_total",
			Help:      "Total number of storage adapter operations",
		}, []string{"backend", "operation", "status"}),
		StorageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Duration of storage adapter operations",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"backend", "operation"}),
	}
}
