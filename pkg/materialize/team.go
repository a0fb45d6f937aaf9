// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package materialize

import (
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
)

// Operator defaults for quota fields left empty in the Environment spec.
const (
	DefaultQuotaCPU         = "10"
	DefaultQuotaMemory      = "20Gi"
	DefaultQuotaCPULimit    = "20"
	DefaultQuotaMemoryLimit = "40Gi"
	DefaultQuotaPods        = "20"
	DefaultQuotaServices    = "10"
)

// NamespaceName derives the canonical namespace identifier of an environment:
// lowercase(<team>-<environment>).
func NamespaceName(team, environment string) string {
	return strings.ToLower(fmt.Sprintf("%s-%s", team, environment))
}

// QuotaName returns the ResourceQuota name inside an environment namespace.
func QuotaName(namespace string) string {
	return fmt.Sprintf("%s-quota", namespace)
}

// NetworkPolicyName returns the default-deny NetworkPolicy name inside an
// environment namespace.
func NetworkPolicyName(namespace string) string {
	return fmt.Sprintf("%s-default-deny", namespace)
}

// EnvironmentNamespace pairs an environment spec with its derived identifier.
type EnvironmentNamespace struct {
	Identifier  string
	Environment tenancyv1alpha1.Environment
}

// EnvironmentNamespaces computes the desired namespace set of a team.
// Environments with an empty name are skipped and reported. When two
// environments fold to the same identifier (case-insensitive collision) the
// later entry wins and the identifier is reported so the reconciler can warn
// instead of silently dropping one.
func EnvironmentNamespaces(team *tenancyv1alpha1.Team) (desired []EnvironmentNamespace, skipped int, collisions []string) {
	index := make(map[string]int)
	for _, env := range team.Spec.Environments {
		if env.Name == "" {
			skipped++
			continue
		}
		id := NamespaceName(team.Name, env.Name)
		if i, ok := index[id]; ok {
			collisions = append(collisions, id)
			desired[i] = EnvironmentNamespace{Identifier: id, Environment: env}
			continue
		}
		index[id] = len(desired)
		desired = append(desired, EnvironmentNamespace{Identifier: id, Environment: env})
	}
	return desired, skipped, collisions
}

// NamespaceLabels returns the labels of an environment namespace: the
// ownership labels merged with the environment's own labels.
func NamespaceLabels(teamName string, env tenancyv1alpha1.Environment) map[string]string {
	labels := map[string]string{
		tenancyv1alpha1.LabelKeyTeam:        teamName,
		tenancyv1alpha1.LabelKeyEnvironment: env.Name,
		tenancyv1alpha1.LabelKeyManagedBy:   tenancyv1alpha1.ManagedByValue,
	}
	for k, v := range env.Labels {
		labels[k] = v
	}
	return labels
}

// Namespace builds the environment namespace object.
func Namespace(teamName string, env tenancyv1alpha1.Environment) *corev1.Namespace {
	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name:   NamespaceName(teamName, env.Name),
			Labels: NamespaceLabels(teamName, env),
			Annotations: map[string]string{
				tenancyv1alpha1.AnnotationKeyDescription: env.Description,
			},
		},
	}
}

// ResourceQuota builds the hard-limit quota for an environment namespace,
// applying operator defaults to empty fields. A malformed amount string is a
// permanent error for the reconcile.
func ResourceQuota(namespace string, quota tenancyv1alpha1.EnvironmentQuota) (*corev1.ResourceQuota, error) {
	hard := corev1.ResourceList{}
	for _, field := range []struct {
		name     corev1.ResourceName
		value    string
		fallback string
	}{
		{corev1.ResourceRequestsCPU, quota.CPU, DefaultQuotaCPU},
		{corev1.ResourceRequestsMemory, quota.Memory, DefaultQuotaMemory},
		{corev1.ResourceLimitsCPU, quota.CPULimit, DefaultQuotaCPULimit},
		{corev1.ResourceLimitsMemory, quota.MemoryLimit, DefaultQuotaMemoryLimit},
		{corev1.ResourcePods, quota.Pods, DefaultQuotaPods},
		{corev1.ResourceServices, quota.Services, DefaultQuotaServices},
	} {
		value := field.value
		if value == "" {
			value = field.fallback
		}
		quantity, err := resource.ParseQuantity(value)
		if err != nil {
			return nil, fmt.Errorf("parsing quota %s amount %q: %w", field.name, value, err)
		}
		hard[field.name] = quantity
	}

	return &corev1.ResourceQuota{
		ObjectMeta: metav1.ObjectMeta{
			Name:      QuotaName(namespace),
			Namespace: namespace,
			Labels:    map[string]string{tenancyv1alpha1.LabelKeyManagedBy: tenancyv1alpha1.ManagedByValue},
		},
		Spec: corev1.ResourceQuotaSpec{Hard: hard},
	}, nil
}

// NetworkPolicy builds the default-deny policy of an environment namespace:
// empty pod selector, both policy types, rule lists from the spec or empty.
func NetworkPolicy(namespace string, policy *tenancyv1alpha1.EnvironmentNetworkPolicy) *networkingv1.NetworkPolicy {
	spec := networkingv1.NetworkPolicySpec{
		PodSelector: metav1.LabelSelector{},
		PolicyTypes: []networkingv1.PolicyType{
			networkingv1.PolicyTypeIngress,
			networkingv1.PolicyTypeEgress,
		},
	}
	if policy != nil {
		spec.Ingress = policy.Ingress
		spec.Egress = policy.Egress
	}
	return &networkingv1.NetworkPolicy{
		ObjectMeta: metav1.ObjectMeta{
			Name:      NetworkPolicyName(namespace),
			Namespace: namespace,
			Labels:    map[string]string{tenancyv1alpha1.LabelKeyManagedBy: tenancyv1alpha1.ManagedByValue},
		},
		Spec: spec,
	}
}

// Role builds a namespaced Role with the given rule set.
func Role(namespace, name string, rules []rbacv1.PolicyRule) *rbacv1.Role {
	return &rbacv1.Role{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    map[string]string{tenancyv1alpha1.LabelKeyManagedBy: tenancyv1alpha1.ManagedByValue},
		},
		Rules: rules,
	}
}

// GroupRoleBinding builds a RoleBinding granting a Role to a group subject.
func GroupRoleBinding(namespace, name, group, roleName string) *rbacv1.RoleBinding {
	return &rbacv1.RoleBinding{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    map[string]string{tenancyv1alpha1.LabelKeyManagedBy: tenancyv1alpha1.ManagedByValue},
		},
		Subjects: []rbacv1.Subject{
			{
				Kind:     rbacv1.GroupKind,
				Name:     group,
				APIGroup: rbacv1.GroupName,
			},
		},
		RoleRef: rbacv1.RoleRef{
			Kind:     "Role",
			Name:     roleName,
			APIGroup: rbacv1.GroupName,
		},
	}
}

// ServiceAccountRoleBinding builds a RoleBinding granting a Role to a
// ServiceAccount subject living in another namespace.
func ServiceAccountRoleBinding(namespace, name, saName, saNamespace, roleName string) *rbacv1.RoleBinding {
	return &rbacv1.RoleBinding{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    map[string]string{tenancyv1alpha1.LabelKeyManagedBy: tenancyv1alpha1.ManagedByValue},
		},
		Subjects: []rbacv1.Subject{
			{
				Kind:      rbacv1.ServiceAccountKind,
				Name:      saName,
				Namespace: saNamespace,
			},
		},
		RoleRef: rbacv1.RoleRef{
			Kind:     "Role",
			Name:     roleName,
			APIGroup: rbacv1.GroupName,
		},
	}
}
