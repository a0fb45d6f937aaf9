// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package tenancy

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
	"github.com/telekom/tenancy-operator/pkg/conditions"
	"github.com/telekom/tenancy-operator/pkg/gateway"
	"github.com/telekom/tenancy-operator/pkg/helpers"
	"github.com/telekom/tenancy-operator/pkg/indexer"
	"github.com/telekom/tenancy-operator/pkg/kubeconfig"
	"github.com/telekom/tenancy-operator/pkg/materialize"
	"github.com/telekom/tenancy-operator/pkg/metrics"
	"github.com/telekom/tenancy-operator/pkg/rbacpolicy"
	"github.com/telekom/tenancy-operator/pkg/tracing"
)

// credentialsRetryInterval is how soon a User is re-reconciled while the
// control plane has not yet populated the token Secret.
const credentialsRetryInterval = 10 * time.Second

// UserReconciler reconciles a User object into its cluster identity
// (ServiceAccount, token Secret, kubeconfig ConfigMap) and per-team
// RoleBindings.
type UserReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	// RestConfig provides the connection parameters embedded in rendered
	// kubeconfigs.
	RestConfig *rest.Config

	gateway  *gateway.Gateway
	dispatch *DispatchTable
	tracer   trace.Tracer

	// identity collapses concurrent users-namespace creation into one call.
	identity singleflight.Group
}

// NewUserReconciler creates a UserReconciler and registers its lifecycle
// handlers in the dispatch table.
func NewUserReconciler(c client.Client, scheme *runtime.Scheme, recorder record.EventRecorder, gw *gateway.Gateway, restConfig *rest.Config, opts ...ReconcilerOption) *UserReconciler {
	r := &UserReconciler{
		Client:     c,
		Scheme:     scheme,
		Recorder:   recorder,
		RestConfig: restConfig,
		gateway:    gw,
		dispatch:   NewDispatchTable(),
		tracer:     noop.NewTracerProvider().Tracer("user"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.dispatch.Register(KindUser, EventCreate, r.handleCreate)
	r.dispatch.Register(KindUser, EventUpdate, r.handleUpdate)
	r.dispatch.Register(KindUser, EventDelete, r.handleDelete)
	return r
}

func (r *UserReconciler) setTracer(t trace.Tracer) { r.tracer = t }

// +kubebuilder:rbac:groups=tenancy.t-caas.telekom.com,resources=users,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=tenancy.t-caas.telekom.com,resources=users/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=tenancy.t-caas.telekom.com,resources=teams,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=namespaces,verbs=get;list;watch;create;update;patch
// +kubebuilder:rbac:groups="",resources=serviceaccounts,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=secrets,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=configmaps,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=rbac.authorization.k8s.io,resources=roles,verbs=get;list;watch;create;update;patch;delete;escalate
// +kubebuilder:rbac:groups=rbac.authorization.k8s.io,resources=rolebindings,verbs=get;list;watch;create;update;patch;delete
func (r *UserReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	start := time.Now()

	user := &tenancyv1alpha1.User{}
	if err := r.Get(ctx, req.NamespacedName, user); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	event := ClassifyEvent(user, user.Status.IdentityCreated)

	ctx, span := r.tracer.Start(ctx, "user.reconcile", trace.WithAttributes(
		tracing.AttrController.String(metrics.ControllerUser),
		tracing.AttrUser.String(user.Name),
		tracing.AttrEventType.String(string(event)),
	))
	defer span.End()

	res, err := r.dispatch.Dispatch(ctx, KindUser, event, user)

	metrics.ReconcileDuration.WithLabelValues(metrics.ControllerUser).Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		metrics.ReconcileTotal.WithLabelValues(metrics.ControllerUser, metrics.ResultError).Inc()
		metrics.ReconcileErrors.WithLabelValues(metrics.ControllerUser, gateway.Classify(err).String()).Inc()
	case event == EventDelete:
		metrics.ReconcileTotal.WithLabelValues(metrics.ControllerUser, metrics.ResultFinalized).Inc()
	case res.RequeueAfter == credentialsRetryInterval:
		metrics.ReconcileTotal.WithLabelValues(metrics.ControllerUser, metrics.ResultRequeue).Inc()
	default:
		metrics.ReconcileTotal.WithLabelValues(metrics.ControllerUser, metrics.ResultSuccess).Inc()
	}
	return res, err
}

func (r *UserReconciler) handleCreate(ctx context.Context, obj client.Object) (ctrl.Result, error) {
	user := obj.(*tenancyv1alpha1.User)

	if !controllerutil.ContainsFinalizer(user, tenancyv1alpha1.UserFinalizer) {
		controllerutil.AddFinalizer(user, tenancyv1alpha1.UserFinalizer)
		if err := r.Update(ctx, user); err != nil {
			return ctrl.Result{}, err
		}
		r.Recorder.Eventf(user, corev1.EventTypeNormal, tenancyv1alpha1.EventReasonFinalizer, "Adding finalizer to User %s", user.Name)
	}
	conditions.MarkTrue(user, tenancyv1alpha1.FinalizerCondition, user.Generation, tenancyv1alpha1.FinalizerReason, tenancyv1alpha1.FinalizerMessage)
	conditions.MarkTrue(user, tenancyv1alpha1.CreateCondition, user.Generation, tenancyv1alpha1.CreateReason, tenancyv1alpha1.CreateMessage)
	if err := r.Status().Update(ctx, user); err != nil {
		return ctrl.Result{}, err
	}

	return r.converge(ctx, user, nil)
}

func (r *UserReconciler) handleUpdate(ctx context.Context, obj client.Object) (ctrl.Result, error) {
	user := obj.(*tenancyv1alpha1.User)

	conditions.MarkTrue(user, tenancyv1alpha1.UpdateCondition, user.Generation, tenancyv1alpha1.UpdateReason, tenancyv1alpha1.UpdateMessage)
	if err := r.Status().Update(ctx, user); err != nil {
		return ctrl.Result{}, err
	}

	removed := difference(user.Status.Teams, user.Spec.Teams)
	if err := r.removeMemberships(ctx, user, removed); err != nil {
		return r.fail(ctx, user, err)
	}

	return r.converge(ctx, user, removed)
}

// converge ensures identity, memberships and credentials for the user, then
// records the result on status.
func (r *UserReconciler) converge(ctx context.Context, user *tenancyv1alpha1.User, removed []string) (ctrl.Result, error) {
	if err := r.ensureIdentity(ctx, user); err != nil {
		return r.fail(ctx, user, err)
	}
	user.Status.IdentityCreated = true

	memberships, err := r.ensureMemberships(ctx, user)
	if err != nil {
		return r.fail(ctx, user, err)
	}

	added := difference(memberships, user.Status.Teams)
	user.Status.TeamsAdded = added
	user.Status.TeamsRemoved = removed
	user.Status.Teams = memberships

	pending, err := r.issueKubeconfig(ctx, user)
	if err != nil {
		return r.fail(ctx, user, err)
	}
	if pending {
		conditions.MarkFalse(user, tenancyv1alpha1.CredentialsCondition, user.Generation, tenancyv1alpha1.CredentialsPendingReason, tenancyv1alpha1.CredentialsPendingMessage)
		r.Recorder.Eventf(user, corev1.EventTypeNormal, tenancyv1alpha1.EventReasonCredentialsPending, "Token secret for user %s not yet populated", user.Name)
		if err := r.Status().Update(ctx, user); err != nil {
			return ctrl.Result{}, err
		}
		return ctrl.Result{RequeueAfter: credentialsRetryInterval}, nil
	}

	user.Status.KubeconfigCreated = true
	conditions.MarkTrue(user, tenancyv1alpha1.CredentialsCondition, user.Generation, tenancyv1alpha1.CredentialsReason, tenancyv1alpha1.CredentialsMessage)
	conditions.MarkTrue(user, tenancyv1alpha1.ReadyCondition, user.Generation, tenancyv1alpha1.ReadyReasonReconciled, tenancyv1alpha1.ReadyMessageReconciled)
	conditions.Delete(user, tenancyv1alpha1.StalledCondition)
	if err := r.Status().Update(ctx, user); err != nil {
		return ctrl.Result{}, err
	}

	return ctrl.Result{RequeueAfter: resyncInterval}, nil
}

// ensureIdentity provisions the shared users namespace, the ServiceAccount and
// the token Secret. Concurrent reconciles share one namespace write through
// the singleflight group.
func (r *UserReconciler) ensureIdentity(ctx context.Context, user *tenancyv1alpha1.User) error {
	_, err, _ := r.identity.Do(materialize.UsersNamespaceName, func() (interface{}, error) {
		outcome, err := r.gateway.Create(ctx, materialize.UsersNamespace())
		if outcome == gateway.OutcomeError {
			return nil, err
		}
		if outcome == gateway.OutcomeOK {
			metrics.ObjectsWritten.WithLabelValues(metrics.ObjectNamespace).Inc()
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	desired := materialize.ServiceAccount(user)
	existing := &corev1.ServiceAccount{}
	outcome, err := r.gateway.Get(ctx, client.ObjectKeyFromObject(desired), existing)
	switch outcome {
	case gateway.OutcomeNotFound:
		if outcome, err := r.gateway.Create(ctx, desired); outcome == gateway.OutcomeError {
			return err
		}
		metrics.ObjectsWritten.WithLabelValues(metrics.ObjectServiceAccount).Inc()
		r.Recorder.Eventf(user, corev1.EventTypeNormal, tenancyv1alpha1.EventReasonCreate, "Created ServiceAccount for user %s", user.Name)
	case gateway.OutcomeOK:
		if helpers.ServiceAccountsEqual(existing, desired) {
			break
		}
		// refresh labels and annotations without touching the token references
		existing.Labels = desired.Labels
		existing.Annotations = desired.Annotations
		if outcome, err := r.gateway.Replace(ctx, existing); outcome == gateway.OutcomeError {
			return err
		}
		metrics.ObjectsWritten.WithLabelValues(metrics.ObjectServiceAccount).Inc()
	default:
		return err
	}

	// the token data is populated by the control plane, never replace it
	outcome, err = r.gateway.Create(ctx, materialize.TokenSecret(user.Name))
	if outcome == gateway.OutcomeError {
		return err
	}
	if outcome == gateway.OutcomeOK {
		metrics.ObjectsWritten.WithLabelValues(metrics.ObjectSecret).Inc()
	}
	return nil
}

// ensureMemberships grants the user's role in every namespace of every team
// the user belongs to, and removes bindings of the other catalog roles so a
// role change does not leave stale grants behind. It returns the team names
// that actually exist.
func (r *UserReconciler) ensureMemberships(ctx context.Context, user *tenancyv1alpha1.User) ([]string, error) {
	log := log.FromContext(ctx)

	role := rbacpolicy.Normalize(user.Spec.Role)
	memberships := make([]string, 0, len(user.Spec.Teams))
	for _, teamName := range user.Spec.Teams {
		team := &tenancyv1alpha1.Team{}
		if err := r.Get(ctx, types.NamespacedName{Name: teamName}, team); err != nil {
			if apierrors.IsNotFound(err) {
				log.Info("User references a Team that does not exist", "user", user.Name, "team", teamName)
				r.Recorder.Eventf(user, corev1.EventTypeWarning, tenancyv1alpha1.EventReasonTeamNotFound, "Team %s referenced by user %s does not exist", teamName, user.Name)
				continue
			}
			return nil, err
		}

		roleName := rbacpolicy.RoleName(teamName, role)
		for _, namespace := range teamNamespaces(team) {
			if err := ensureRole(ctx, r.gateway, materialize.Role(namespace, roleName, rbacpolicy.RulesFor(role))); err != nil {
				return nil, err
			}

			binding := materialize.ServiceAccountRoleBinding(
				namespace,
				rbacpolicy.BindingName(user.Name, roleName),
				user.Name,
				materialize.UsersNamespaceName,
				roleName,
			)
			if err := ensureBinding(ctx, r.gateway, binding); err != nil {
				return nil, err
			}

			// drop bindings of the roles the user no longer holds
			for _, otherRole := range rbacpolicy.AllRoleNames(teamName) {
				if otherRole == roleName {
					continue
				}
				if err := r.deleteBinding(ctx, namespace, rbacpolicy.BindingName(user.Name, otherRole)); err != nil {
					return nil, err
				}
			}
		}
		memberships = append(memberships, teamName)
	}
	sort.Strings(memberships)
	return memberships, nil
}

// removeMemberships deletes the user's bindings in every namespace of the
// given teams. Teams or bindings that are already gone are tolerated.
func (r *UserReconciler) removeMemberships(ctx context.Context, user *tenancyv1alpha1.User, teams []string) error {
	for _, teamName := range teams {
		team := &tenancyv1alpha1.Team{}
		if err := r.Get(ctx, types.NamespacedName{Name: teamName}, team); err != nil {
			if apierrors.IsNotFound(err) {
				continue
			}
			return err
		}
		for _, namespace := range teamNamespaces(team) {
			// the prior role is not re-derived from status, probe every catalog role
			for _, roleName := range rbacpolicy.AllRoleNames(teamName) {
				if err := r.deleteBinding(ctx, namespace, rbacpolicy.BindingName(user.Name, roleName)); err != nil {
					return err
				}
			}
		}
		r.Recorder.Eventf(user, corev1.EventTypeNormal, tenancyv1alpha1.EventReasonDeletion, "Revoked access of user %s to team %s", user.Name, teamName)
	}
	return nil
}

func (r *UserReconciler) deleteBinding(ctx context.Context, namespace, name string) error {
	binding := &rbacv1.RoleBinding{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace}}
	outcome, err := r.gateway.Delete(ctx, binding)
	if outcome == gateway.OutcomeError {
		return err
	}
	if outcome == gateway.OutcomeOK {
		metrics.ObjectsDeleted.WithLabelValues(metrics.ObjectRoleBinding).Inc()
	}
	return nil
}

// issueKubeconfig renders and stores the user's kubeconfig bundle. It reports
// pending=true while the token Secret has no token data yet.
func (r *UserReconciler) issueKubeconfig(ctx context.Context, user *tenancyv1alpha1.User) (bool, error) {
	secret := &corev1.Secret{}
	key := client.ObjectKey{Name: materialize.TokenSecretName(user.Name), Namespace: materialize.UsersNamespaceName}
	outcome, err := r.gateway.Get(ctx, key, secret)
	if outcome == gateway.OutcomeError {
		return false, err
	}
	if outcome == gateway.OutcomeNotFound || len(secret.Data[corev1.ServiceAccountTokenKey]) == 0 {
		return true, nil
	}

	raw, err := kubeconfig.Render(r.RestConfig, user.Name, secret.Data[corev1.ServiceAccountTokenKey])
	if err != nil {
		return false, fmt.Errorf("rendering kubeconfig for user %s: %w", user.Name, err)
	}

	cm := materialize.KubeconfigConfigMap(user.Name, raw)
	if _, err := r.gateway.CreateOrReplace(ctx, cm, &corev1.ConfigMap{}); err != nil {
		return false, err
	}
	metrics.ObjectsWritten.WithLabelValues(metrics.ObjectConfigMap).Inc()
	metrics.KubeconfigsIssued.WithLabelValues(user.Name).Inc()
	return false, nil
}

func (r *UserReconciler) handleDelete(ctx context.Context, obj client.Object) (ctrl.Result, error) {
	user := obj.(*tenancyv1alpha1.User)
	log := log.FromContext(ctx)

	log.Info("Deleting cluster identity for the User, as it is marked for deletion", "user", user.Name)
	conditions.MarkTrue(user, tenancyv1alpha1.DeleteCondition, user.Generation, tenancyv1alpha1.DeleteReason, tenancyv1alpha1.DeleteMessage)
	if err := r.Status().Update(ctx, user); err != nil {
		return ctrl.Result{}, err
	}

	if !controllerutil.ContainsFinalizer(user, tenancyv1alpha1.UserFinalizer) {
		return ctrl.Result{}, nil
	}

	teams := user.Status.Teams
	if len(teams) == 0 {
		teams = user.Spec.Teams
	}
	// teardown is best effort: a failed cleanup is logged but never blocks
	// removal of the User record itself
	if err := r.removeMemberships(ctx, user, teams); err != nil {
		log.Error(err, "Failed to revoke memberships of deleted user", "user", user.Name)
	}

	for _, identity := range []struct {
		object client.Object
		kind   string
	}{
		{&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: materialize.KubeconfigName(user.Name), Namespace: materialize.UsersNamespaceName}}, metrics.ObjectConfigMap},
		{&corev1.Secret{ObjectMeta: metav1.ObjectMeta{Name: materialize.TokenSecretName(user.Name), Namespace: materialize.UsersNamespaceName}}, metrics.ObjectSecret},
		{&corev1.ServiceAccount{ObjectMeta: metav1.ObjectMeta{Name: user.Name, Namespace: materialize.UsersNamespaceName}}, metrics.ObjectServiceAccount},
	} {
		outcome, err := r.gateway.Delete(ctx, identity.object)
		switch outcome {
		case gateway.OutcomeError:
			log.Error(err, "Failed to delete identity object of deleted user", "user", user.Name, "name", identity.object.GetName())
		case gateway.OutcomeOK:
			metrics.ObjectsDeleted.WithLabelValues(identity.kind).Inc()
		}
	}
	r.Recorder.Eventf(user, corev1.EventTypeWarning, tenancyv1alpha1.EventReasonDeletion, "Deleted cluster identity of user %s", user.Name)

	controllerutil.RemoveFinalizer(user, tenancyv1alpha1.UserFinalizer)
	if err := r.Update(ctx, user); err != nil {
		return ctrl.Result{}, err
	}
	return ctrl.Result{}, nil
}

// fail surfaces a failure on status. Permanent failures mark the User stalled
// and are not retried; everything else bubbles up for a backoff retry.
func (r *UserReconciler) fail(ctx context.Context, user *tenancyv1alpha1.User, err error) (ctrl.Result, error) {
	if gateway.Classify(err) != gateway.ClassPermanent {
		return ctrl.Result{}, err
	}

	conditions.MarkTrue(user, tenancyv1alpha1.StalledCondition, user.Generation, tenancyv1alpha1.ReadyReasonFailed, tenancyv1alpha1.ReadyMessageFailed, err)
	conditions.MarkFalse(user, tenancyv1alpha1.ReadyCondition, user.Generation, tenancyv1alpha1.ReadyReasonFailed, tenancyv1alpha1.ReadyMessageFailed, err)
	if statusErr := r.Status().Update(ctx, user); statusErr != nil {
		return ctrl.Result{}, statusErr
	}
	r.Recorder.Eventf(user, corev1.EventTypeWarning, tenancyv1alpha1.EventReasonCreate, "Reconciliation stalled: %v", err)
	return ctrl.Result{}, reconcile.TerminalError(fmt.Errorf("user %s stalled: %w", user.Name, err))
}

// teamNamespaces returns the namespaces of a team, preferring the tracked
// status list and falling back to the spec-derived set for teams that have not
// finished their first reconcile.
func teamNamespaces(team *tenancyv1alpha1.Team) []string {
	if names := team.TrackedNamespaceNames(); len(names) > 0 {
		return names
	}
	desired, _, _ := materialize.EnvironmentNamespaces(team)
	names := make([]string, 0, len(desired))
	for _, en := range desired {
		names = append(names, en.Identifier)
	}
	return names
}

// difference returns the elements of a that are not in b, sorted.
func difference(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}
	var out []string
	for _, s := range a {
		if !inB[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// usersForTeam maps a Team change to reconcile requests for its member users,
// resolved through the user-by-team field index.
func (r *UserReconciler) usersForTeam(ctx context.Context, obj client.Object) []reconcile.Request {
	users := &tenancyv1alpha1.UserList{}
	if err := r.List(ctx, users, client.MatchingFields{indexer.UserTeamsField: obj.GetName()}); err != nil {
		log.FromContext(ctx).Error(err, "Failed to list users of team", "team", obj.GetName())
		return nil
	}
	requests := make([]reconcile.Request, 0, len(users.Items))
	for _, user := range users.Items {
		requests = append(requests, reconcile.Request{NamespacedName: types.NamespacedName{Name: user.Name}})
	}
	return requests
}

// SetupWithManager sets up the controller with the Manager. Generation-filtered
// so status-only writes do not re-trigger reconciles. Team changes requeue the
// member users so their memberships follow environment changes.
func (r *UserReconciler) SetupWithManager(mgr ctrl.Manager, concurrency int) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&tenancyv1alpha1.User{}).
		Watches(&tenancyv1alpha1.Team{}, handler.EnqueueRequestsFromMapFunc(r.usersForTeam)).
		WithEventFilter(predicate.GenerationChangedPredicate{}).
		WithOptions(controller.Options{MaxConcurrentReconciles: concurrency}).
		Complete(r)
}
