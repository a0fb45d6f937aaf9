/*
Copyright © 2026 Deutsche Telekom AG
*/

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	// Namespace is the Prometheus metrics namespace for tenancy-operator
	Namespace = "tenancy_operator"
)

var (
	// ReconcileTotal counts the total number of reconciliations per controller
	ReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reconcile_total",
			Help:      "Total number of reconciliations per controller",
		},
		[]string{"controller", "result"},
	)

	// ReconcileDuration measures the duration of reconciliations in seconds
	ReconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliations per controller in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"controller"},
	)

	// ReconcileErrors counts the total number of reconciliation errors per
	// controller, labeled by the uniform error class
	ReconcileErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "reconcile_errors_total",
			Help:      "Total number of reconciliation errors per controller",
		},
		[]string{"controller", "error_class"},
	)

	// ObjectsWritten counts the downstream objects created or replaced
	ObjectsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "objects_written_total",
			Help:      "Total number of downstream objects created or replaced",
		},
		[]string{"object_type"},
	)

	// ObjectsDeleted counts the downstream objects deleted
	ObjectsDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "objects_deleted_total",
			Help:      "Total number of downstream objects deleted",
		},
		[]string{"object_type"},
	)

	// EnvironmentsActive tracks the number of provisioned environment namespaces per team
	EnvironmentsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "environments_active",
			Help:      "Number of provisioned environment namespaces per team",
		},
		[]string{"team"},
	)

	// KubeconfigsIssued counts the kubeconfig documents rendered per user
	KubeconfigsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "kubeconfigs_issued_total",
			Help:      "Total number of kubeconfig documents rendered",
		},
		[]string{"user"},
	)

	// AdminRequestsTotal counts admin API requests by route and status code
	AdminRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "admin_requests_total",
			Help:      "Total number of admin API requests",
		},
		[]string{"route", "code"},
	)
)

func init() {
	// Register all metrics with controller-runtime's registry
	metrics.Registry.MustRegister(
		ReconcileTotal,
		ReconcileDuration,
		ReconcileErrors,
		ObjectsWritten,
		ObjectsDeleted,
		EnvironmentsActive,
		KubeconfigsIssued,
		AdminRequestsTotal,
	)
}

// ReconcileResult constants for labeling reconcile outcomes
const (
	ResultSuccess   = "success"
	ResultError     = "error"
	ResultRequeue   = "requeue"
	ResultSkipped   = "skipped"
	ResultFinalized = "finalized"
)

// ControllerName constants
const (
	ControllerTeam = "Team"
	ControllerUser = "User"
)

// ObjectType constants
const (
	ObjectNamespace      = "Namespace"
	ObjectResourceQuota  = "ResourceQuota"
	ObjectNetworkPolicy  = "NetworkPolicy"
	ObjectRole           = "Role"
	ObjectRoleBinding    = "RoleBinding"
	ObjectServiceAccount = "ServiceAccount"
	ObjectSecret         = "Secret"
	ObjectConfigMap      = "ConfigMap"
)

// DeleteTeamSeries drops the per-team gauge series when a team is finalized.
func DeleteTeamSeries(team string) {
	EnvironmentsActive.DeleteLabelValues(team)
}
