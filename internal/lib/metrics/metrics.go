// Package metrics содержит счётчики Prometheus для ядра управления доступом.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDecisions — решения Access Gate с меткой исхода
	// (allow, denied_disabled, denied_trial_expired, denied_subscription_expired).
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_decisions_total",
			Help: "Total number of access gate decisions by outcome",
		},
		[]string{"outcome"},
	)

	// SyncTransitions — переходы флагов, применённые синхронизатором
	// (reactivated, deactivated, corrected).
	SyncTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_sync_transitions_total",
			Help: "Total number of tenant flag transitions applied by the status synchronizer",
		},
		[]string{"transition"},
	)

	// SweepExpiredRecords — записи оплат, переведённые свипом в vencida.
	SweepExpiredRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_expired_records_total",
			Help: "Total number of subscription records marked expired by the reconciliation sweep",
		},
	)

	// SweepDeactivatedTenants — профессора, отключённые свипом.
	SweepDeactivatedTenants = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconcile_deactivated_tenants_total",
			Help: "Total number of tenants deactivated by the reconciliation sweep",
		},
	)
)
