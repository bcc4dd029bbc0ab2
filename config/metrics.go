package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "inventory"

var (
	// ReconcileOperations counts child rows written by commits, labelled by entity and op (insert, update, delete, skip).
	ReconcileOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "reconcile_operations_total",
		Help:      "Child item mutations applied by edit-session commits.",
	}, []string{"entity", "op"})

	HistoryRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "history_records_total",
		Help:      "Owner history rows appended.",
	}, []string{"entity"})

	DeleteBlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "delete_blocked_total",
		Help:      "Deletes refused because other rows still reference the record.",
	}, []string{"entity"})

	StoreFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "store_failures_total",
		Help:      "Store operations that failed and forced a reconnect.",
	})

	RequestCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "api",
		Name:      "request_count",
		Help:      "Number of API requests served.",
	}, []string{"method", "path", "code"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: "api",
		Name:      "request_duration",
		Help:      "API request duration in seconds.",
		Buckets:   []float64{0.1, 1.0, 10.0, 30.0},
	}, []string{"method", "path", "code"})
)
