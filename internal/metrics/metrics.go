package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogueOpsTotal counts catalogue operations by name and result code.
	CatalogueOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealmax_catalogue_operations_total",
		Help: "The total number of catalogue operations, labelled by operation and result",
	}, []string{"op", "result"})

	// BattlesRecordedTotal counts stat updates by outcome.
	BattlesRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealmax_battles_recorded_total",
		Help: "The total number of battle results recorded",
	}, []string{"outcome"})

	CatalogueOpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mealmax_catalogue_operation_latency_seconds",
		Help:    "Latency of catalogue operations against the database",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
)
