// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package tenancy

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
	"github.com/telekom/tenancy-operator/pkg/conditions"
	"github.com/telekom/tenancy-operator/pkg/gateway"
	"github.com/telekom/tenancy-operator/pkg/materialize"
	"github.com/telekom/tenancy-operator/pkg/metrics"
	"github.com/telekom/tenancy-operator/pkg/rbacpolicy"
	"github.com/telekom/tenancy-operator/pkg/tracing"
)

// resyncInterval is how often a converged Team is re-reconciled to repair drift.
const resyncInterval = 60 * time.Second

// TeamReconciler reconciles a Team object into its environment namespaces,
// quotas, network policies and per-team RBAC roles.
type TeamReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	gateway  *gateway.Gateway
	dispatch *DispatchTable
	tracer   trace.Tracer
}

// NewTeamReconciler creates a TeamReconciler and registers its lifecycle
// handlers in the dispatch table.
func NewTeamReconciler(c client.Client, scheme *runtime.Scheme, recorder record.EventRecorder, gw *gateway.Gateway, opts ...ReconcilerOption) *TeamReconciler {
	r := &TeamReconciler{
		Client:   c,
		Scheme:   scheme,
		Recorder: recorder,
		gateway:  gw,
		dispatch: NewDispatchTable(),
		tracer:   noop.NewTracerProvider().Tracer("team"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.dispatch.Register(KindTeam, EventCreate, r.handleCreate)
	r.dispatch.Register(KindTeam, EventUpdate, r.handleUpdate)
	r.dispatch.Register(KindTeam, EventDelete, r.handleDelete)
	return r
}

func (r *TeamReconciler) setTracer(t trace.Tracer) { r.tracer = t }

// +kubebuilder:rbac:groups=tenancy.t-caas.telekom.com,resources=teams,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=tenancy.t-caas.telekom.com,resources=teams/status,verbs=get;update;patch
// +kubebuilder:rbac:groups="",resources=namespaces,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=resourcequotas,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=networking.k8s.io,resources=networkpolicies,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=rbac.authorization.k8s.io,resources=roles,verbs=get;list;watch;create;update;patch;delete;escalate
// +kubebuilder:rbac:groups=rbac.authorization.k8s.io,resources=rolebindings,verbs=get;list;watch;create;update;patch;delete
func (r *TeamReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	start := time.Now()

	team := &tenancyv1alpha1.Team{}
	if err := r.Get(ctx, req.NamespacedName, team); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	provisioned := len(team.Status.Namespaces) > 0 || conditions.Has(team, tenancyv1alpha1.CreateCondition)
	event := ClassifyEvent(team, provisioned)

	ctx, span := r.tracer.Start(ctx, "team.reconcile", trace.WithAttributes(
		tracing.AttrController.String(metrics.ControllerTeam),
		tracing.AttrTeam.String(team.Name),
		tracing.AttrEventType.String(string(event)),
	))
	defer span.End()

	res, err := r.dispatch.Dispatch(ctx, KindTeam, event, team)

	metrics.ReconcileDuration.WithLabelValues(metrics.ControllerTeam).Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.ReconcileTotal.WithLabelValues(metrics.ControllerTeam, metrics.ResultError).Inc()
		metrics.ReconcileErrors.WithLabelValues(metrics.ControllerTeam, gateway.Classify(err).String()).Inc()
	case event == EventDelete:
		metrics.ReconcileTotal.WithLabelValues(metrics.ControllerTeam, metrics.ResultFinalized).Inc()
	default:
		metrics.ReconcileTotal.WithLabelValues(metrics.ControllerTeam, metrics.ResultSuccess).Inc()
	}
	return res, err
}

func (r *TeamReconciler) handleCreate(ctx context.Context, obj client.Object) (ctrl.Result, error) {
	team := obj.(*tenancyv1alpha1.Team)
	log := log.FromContext(ctx)

	if !controllerutil.ContainsFinalizer(team, tenancyv1alpha1.TeamFinalizer) {
		controllerutil.AddFinalizer(team, tenancyv1alpha1.TeamFinalizer)
		if err := r.Update(ctx, team); err != nil {
			return ctrl.Result{}, err
		}
		r.Recorder.Eventf(team, corev1.EventTypeNormal, tenancyv1alpha1.EventReasonFinalizer, "Adding finalizer to Team %s", team.Name)
	}
	conditions.MarkTrue(team, tenancyv1alpha1.FinalizerCondition, team.Generation, tenancyv1alpha1.FinalizerReason, tenancyv1alpha1.FinalizerMessage)
	conditions.MarkTrue(team, tenancyv1alpha1.CreateCondition, team.Generation, tenancyv1alpha1.CreateReason, tenancyv1alpha1.CreateMessage)
	if err := r.Status().Update(ctx, team); err != nil {
		return ctrl.Result{}, err
	}

	if len(team.Spec.Environments) == 0 {
		log.Info("Team has no environments, nothing to provision", "team", team.Name)
		r.Recorder.Eventf(team, corev1.EventTypeWarning, tenancyv1alpha1.EventReasonNoEnvironments, "Team %s defines no environments", team.Name)
		conditions.MarkTrue(team, tenancyv1alpha1.ReadyCondition, team.Generation, tenancyv1alpha1.ReadyReasonReconciled, tenancyv1alpha1.ReadyMessageReconciled)
		return ctrl.Result{}, r.Status().Update(ctx, team)
	}

	return r.converge(ctx, team, false)
}

func (r *TeamReconciler) handleUpdate(ctx context.Context, obj client.Object) (ctrl.Result, error) {
	team := obj.(*tenancyv1alpha1.Team)

	conditions.MarkTrue(team, tenancyv1alpha1.UpdateCondition, team.Generation, tenancyv1alpha1.UpdateReason, tenancyv1alpha1.UpdateMessage)
	if err := r.Status().Update(ctx, team); err != nil {
		return ctrl.Result{}, err
	}

	return r.converge(ctx, team, true)
}

// converge drives the cluster toward the team's desired environment set and
// records the result on status. On update the previously tracked namespaces
// that are no longer desired are garbage collected.
func (r *TeamReconciler) converge(ctx context.Context, team *tenancyv1alpha1.Team, update bool) (ctrl.Result, error) {
	log := log.FromContext(ctx)

	desired, skipped, collisions := materialize.EnvironmentNamespaces(team)
	if skipped > 0 {
		log.Info("Skipped environments with empty names", "team", team.Name, "count", skipped)
	}
	for _, id := range collisions {
		log.Info("Environment namespace collision, later entry wins", "team", team.Name, "namespace", id)
		r.Recorder.Eventf(team, corev1.EventTypeWarning, tenancyv1alpha1.EventReasonNamespaceCollision,
			"Environments collide on namespace %s, the later entry wins", id)
	}

	tracked := make(map[string]bool, len(team.Status.Namespaces))
	for _, ns := range team.Status.Namespaces {
		tracked[ns.Name] = true
	}

	var created, updated int
	namespaces := make([]tenancyv1alpha1.ProvisionedNamespace, 0, len(desired))
	for _, en := range desired {
		state, err := r.ensureEnvironment(ctx, team, en)
		if err != nil {
			return r.fail(ctx, team, err)
		}
		if tracked[en.Identifier] {
			state = tenancyv1alpha1.NamespaceStateUpdated
			updated++
		} else if state == tenancyv1alpha1.NamespaceStateCreated {
			created++
		}
		namespaces = append(namespaces, tenancyv1alpha1.ProvisionedNamespace{
			Name:        en.Identifier,
			Environment: en.Environment.Name,
			Description: en.Environment.Description,
			State:       state,
		})
	}

	var deleted []string
	if update {
		desiredSet := make(map[string]bool, len(desired))
		for _, en := range desired {
			desiredSet[en.Identifier] = true
		}
		for _, stale := range team.Status.Namespaces {
			if desiredSet[stale.Name] {
				continue
			}
			outcome, err := r.gateway.Delete(ctx, &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: stale.Name}})
			if outcome == gateway.OutcomeError {
				// cleanup is best effort: keep the namespace tracked so the
				// next resync retries, and carry on with the reconcile
				log.Error(err, "Failed to delete stale environment namespace", "team", team.Name, "namespace", stale.Name)
				namespaces = append(namespaces, stale)
				continue
			}
			if outcome == gateway.OutcomeOK {
				metrics.ObjectsDeleted.WithLabelValues(metrics.ObjectNamespace).Inc()
			}
			deleted = append(deleted, stale.Name)
			r.Recorder.Eventf(team, corev1.EventTypeNormal, tenancyv1alpha1.EventReasonDeletion, "Deleted environment namespace %s", stale.Name)
		}
	}

	team.Status.EnvironmentsCreated = created
	team.Status.EnvironmentsUpdated = updated
	team.Status.EnvironmentsDeleted = len(deleted)
	team.Status.Namespaces = namespaces
	team.Status.DeletedNamespaces = deleted
	conditions.MarkTrue(team, tenancyv1alpha1.ReadyCondition, team.Generation, tenancyv1alpha1.ReadyReasonReconciled, tenancyv1alpha1.ReadyMessageReconciled)
	conditions.Delete(team, tenancyv1alpha1.StalledCondition)
	if err := r.Status().Update(ctx, team); err != nil {
		return ctrl.Result{}, err
	}
	metrics.EnvironmentsActive.WithLabelValues(team.Name).Set(float64(len(namespaces)))

	return ctrl.Result{RequeueAfter: resyncInterval}, nil
}

// ensureEnvironment provisions or repairs one environment namespace with its
// quota, default-deny policy, per-team roles and admin group binding. Objects
// that already match the desired state are not rewritten.
func (r *TeamReconciler) ensureEnvironment(ctx context.Context, team *tenancyv1alpha1.Team, en materialize.EnvironmentNamespace) (string, error) {
	log := log.FromContext(ctx)

	state := tenancyv1alpha1.NamespaceStateAlreadyExists
	ns := materialize.Namespace(team.Name, en.Environment)
	outcome, err := r.gateway.Get(ctx, client.ObjectKeyFromObject(ns), &corev1.Namespace{})
	switch outcome {
	case gateway.OutcomeNotFound:
		created, err := r.gateway.Create(ctx, ns)
		if created == gateway.OutcomeError {
			return "", err
		}
		// a concurrent worker may have won the create race
		if created == gateway.OutcomeOK {
			state = tenancyv1alpha1.NamespaceStateCreated
			log.Info("Created environment namespace", "team", team.Name, "namespace", en.Identifier)
			metrics.ObjectsWritten.WithLabelValues(metrics.ObjectNamespace).Inc()
			r.Recorder.Eventf(team, corev1.EventTypeNormal, tenancyv1alpha1.EventReasonCreate, "Created environment namespace %s", en.Identifier)
		}
	case gateway.OutcomeOK:
	default:
		return "", err
	}

	quota, err := materialize.ResourceQuota(en.Identifier, en.Environment.Quota)
	if err != nil {
		return "", err
	}
	if err := ensureQuota(ctx, r.gateway, quota); err != nil {
		return "", err
	}

	if err := ensureNetworkPolicy(ctx, r.gateway, materialize.NetworkPolicy(en.Identifier, en.Environment.NetworkPolicy)); err != nil {
		return "", err
	}

	for _, role := range rbacpolicy.Roles {
		obj := materialize.Role(en.Identifier, rbacpolicy.RoleName(team.Name, role), rbacpolicy.RulesFor(role))
		if err := ensureRole(ctx, r.gateway, obj); err != nil {
			return "", err
		}
	}

	adminBinding := materialize.GroupRoleBinding(
		en.Identifier,
		rbacpolicy.AdminBindingName(team.Name),
		rbacpolicy.AdminGroupName(team.Name),
		rbacpolicy.RoleName(team.Name, tenancyv1alpha1.UserRoleAdmin),
	)
	if err := ensureBinding(ctx, r.gateway, adminBinding); err != nil {
		return "", err
	}

	return state, nil
}

func (r *TeamReconciler) handleDelete(ctx context.Context, obj client.Object) (ctrl.Result, error) {
	team := obj.(*tenancyv1alpha1.Team)
	log := log.FromContext(ctx)

	log.Info("Deleting environment namespaces for the Team, as it is marked for deletion", "team", team.Name)
	conditions.MarkTrue(team, tenancyv1alpha1.DeleteCondition, team.Generation, tenancyv1alpha1.DeleteReason, tenancyv1alpha1.DeleteMessage)
	if err := r.Status().Update(ctx, team); err != nil {
		return ctrl.Result{}, err
	}

	if !controllerutil.ContainsFinalizer(team, tenancyv1alpha1.TeamFinalizer) {
		return ctrl.Result{}, nil
	}

	for _, name := range deletionTargets(team) {
		outcome, err := r.gateway.Delete(ctx, &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}})
		if outcome == gateway.OutcomeError {
			return ctrl.Result{}, err
		}
		if outcome == gateway.OutcomeOK {
			metrics.ObjectsDeleted.WithLabelValues(metrics.ObjectNamespace).Inc()
			r.Recorder.Eventf(team, corev1.EventTypeWarning, tenancyv1alpha1.EventReasonDeletion, "Deleted environment namespace %s", name)
		}
	}

	controllerutil.RemoveFinalizer(team, tenancyv1alpha1.TeamFinalizer)
	if err := r.Update(ctx, team); err != nil {
		return ctrl.Result{}, err
	}
	metrics.DeleteTeamSeries(team.Name)
	return ctrl.Result{}, nil
}

// deletionTargets returns the union of the namespaces tracked on status and
// the ones derived from spec, so a team deleted before its first status write
// still gets its namespaces cleaned up.
func deletionTargets(team *tenancyv1alpha1.Team) []string {
	seen := make(map[string]bool)
	var names []string
	for _, name := range team.TrackedNamespaceNames() {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	desired, _, _ := materialize.EnvironmentNamespaces(team)
	for _, en := range desired {
		if !seen[en.Identifier] {
			seen[en.Identifier] = true
			names = append(names, en.Identifier)
		}
	}
	return names
}

// fail surfaces a failure on status. Permanent failures mark the Team stalled
// and are not retried; everything else bubbles up for a backoff retry.
func (r *TeamReconciler) fail(ctx context.Context, team *tenancyv1alpha1.Team, err error) (ctrl.Result, error) {
	if gateway.Classify(err) != gateway.ClassPermanent {
		return ctrl.Result{}, err
	}

	conditions.MarkTrue(team, tenancyv1alpha1.StalledCondition, team.Generation, tenancyv1alpha1.ReadyReasonFailed, tenancyv1alpha1.ReadyMessageFailed, err)
	conditions.MarkFalse(team, tenancyv1alpha1.ReadyCondition, team.Generation, tenancyv1alpha1.ReadyReasonFailed, tenancyv1alpha1.ReadyMessageFailed, err)
	if statusErr := r.Status().Update(ctx, team); statusErr != nil {
		return ctrl.Result{}, statusErr
	}
	r.Recorder.Eventf(team, corev1.EventTypeWarning, tenancyv1alpha1.EventReasonCreate, "Reconciliation stalled: %v", err)
	return ctrl.Result{}, reconcile.TerminalError(fmt.Errorf("team %s stalled: %w", team.Name, err))
}

// SetupWithManager sets up the controller with the Manager. Generation-filtered
// so status-only writes do not re-trigger reconciles.
func (r *TeamReconciler) SetupWithManager(mgr ctrl.Manager, concurrency int) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&tenancyv1alpha1.Team{}).
		WithEventFilter(predicate.GenerationChangedPredicate{}).
		WithOptions(controller.Options{MaxConcurrentReconciles: concurrency}).
		Complete(r)
}
