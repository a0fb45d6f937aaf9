// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package tenancy

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	apiequality "k8s.io/apimachinery/pkg/api/equality"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/telekom/tenancy-operator/pkg/gateway"
	"github.com/telekom/tenancy-operator/pkg/helpers"
	"github.com/telekom/tenancy-operator/pkg/metrics"
)

// Write-avoidance helpers shared by the Team and User reconcilers. Each one
// reads the current object and writes only when the cluster state differs
// from the desired one, so a steady-state resync issues no write calls.

func ensureQuota(ctx context.Context, gw *gateway.Gateway, desired *corev1.ResourceQuota) error {
	existing := &corev1.ResourceQuota{}
	outcome, err := gw.Get(ctx, client.ObjectKeyFromObject(desired), existing)
	if outcome == gateway.OutcomeError {
		return err
	}
	if outcome == gateway.OutcomeOK && apiequality.Semantic.DeepEqual(existing.Spec, desired.Spec) {
		return nil
	}
	if _, err := gw.CreateOrReplace(ctx, desired, &corev1.ResourceQuota{}); err != nil {
		return err
	}
	metrics.ObjectsWritten.WithLabelValues(metrics.ObjectResourceQuota).Inc()
	return nil
}

func ensureNetworkPolicy(ctx context.Context, gw *gateway.Gateway, desired *networkingv1.NetworkPolicy) error {
	existing := &networkingv1.NetworkPolicy{}
	outcome, err := gw.Get(ctx, client.ObjectKeyFromObject(desired), existing)
	if outcome == gateway.OutcomeError {
		return err
	}
	if outcome == gateway.OutcomeOK && apiequality.Semantic.DeepEqual(existing.Spec, desired.Spec) {
		return nil
	}
	if _, err := gw.CreateOrReplace(ctx, desired, &networkingv1.NetworkPolicy{}); err != nil {
		return err
	}
	metrics.ObjectsWritten.WithLabelValues(metrics.ObjectNetworkPolicy).Inc()
	return nil
}

func ensureRole(ctx context.Context, gw *gateway.Gateway, desired *rbacv1.Role) error {
	existing := &rbacv1.Role{}
	outcome, err := gw.Get(ctx, client.ObjectKeyFromObject(desired), existing)
	if outcome == gateway.OutcomeError {
		return err
	}
	if outcome == gateway.OutcomeOK && helpers.PolicyRulesEqual(existing.Rules, desired.Rules) {
		return nil
	}
	if _, err := gw.CreateOrReplace(ctx, desired, &rbacv1.Role{}); err != nil {
		return err
	}
	metrics.ObjectsWritten.WithLabelValues(metrics.ObjectRole).Inc()
	return nil
}

func ensureBinding(ctx context.Context, gw *gateway.Gateway, desired *rbacv1.RoleBinding) error {
	existing := &rbacv1.RoleBinding{}
	outcome, err := gw.Get(ctx, client.ObjectKeyFromObject(desired), existing)
	if outcome == gateway.OutcomeError {
		return err
	}
	if outcome == gateway.OutcomeOK && helpers.RoleBindsEqual(existing, desired) {
		return nil
	}
	if _, err := gw.CreateOrReplace(ctx, desired, &rbacv1.RoleBinding{}); err != nil {
		return err
	}
	metrics.ObjectsWritten.WithLabelValues(metrics.ObjectRoleBinding).Inc()
	return nil
}
