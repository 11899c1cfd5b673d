package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Colectores Prometheus del core de inventario. Se registran en el registry
// global y se exponen en /metrics cuando METRICS_ENABLED está activo.
var (
	MovementsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockledger_movements_applied_total",
		Help: "Movimientos de stock aplicados, por tipo.",
	}, []string{"kind"})

	MovementsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockledger_movements_rejected_total",
		Help: "Movimientos rechazados, por motivo (invalid, not_found, negative_stock, internal).",
	}, []string{"reason"})

	ReconcileRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockledger_reconcile_runs_total",
		Help: "Pasadas de reconciliación de alertas iniciadas.",
	})

	ReconcileSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockledger_reconcile_skipped_total",
		Help: "Corridas omitidas por haber otra en curso (exclusión single-flight).",
	})

	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockledger_reconcile_duration_seconds",
		Help:    "Duración de la pasada de reconciliación.",
		Buckets: prometheus.DefBuckets,
	})

	AlertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockledger_alerts_created_total",
		Help: "Alertas creadas por el reconciliador, por tipo.",
	}, []string{"kind"})

	AlertsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockledger_alerts_resolved_total",
		Help: "Alertas resueltas automáticamente por el reconciliador, por tipo.",
	}, []string{"kind"})
)
