// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package rbacpolicy is the static catalog mapping a policy role
// (admin/developer/viewer) to its RBAC rule set and derived object names.
// It performs no I/O.
package rbacpolicy

import (
	"fmt"

	rbacv1 "k8s.io/api/rbac/v1"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
)

// BindingSuffix is the suffix appended to role binding names.
const BindingSuffix = "binding"

// Roles lists every role the catalog resolves, in the order the per-user
// cleanup probes them.
var Roles = []tenancyv1alpha1.UserRole{
	tenancyv1alpha1.UserRoleAdmin,
	tenancyv1alpha1.UserRoleDeveloper,
	tenancyv1alpha1.UserRoleViewer,
}

// Normalize returns the role itself for a recognized value and the developer
// role for anything else, so role resolution is total.
func Normalize(role tenancyv1alpha1.UserRole) tenancyv1alpha1.UserRole {
	switch role {
	case tenancyv1alpha1.UserRoleAdmin, tenancyv1alpha1.UserRoleDeveloper, tenancyv1alpha1.UserRoleViewer:
		return role
	default:
		return tenancyv1alpha1.UserRoleDeveloper
	}
}

// RulesFor returns the fixed rule set of a role. The rule set is never empty.
func RulesFor(role tenancyv1alpha1.UserRole) []rbacv1.PolicyRule {
	switch Normalize(role) {
	case tenancyv1alpha1.UserRoleAdmin:
		return []rbacv1.PolicyRule{
			{
				APIGroups: []string{"*"},
				Resources: []string{"*"},
				Verbs:     []string{"*"},
			},
		}
	case tenancyv1alpha1.UserRoleViewer:
		return []rbacv1.PolicyRule{
			{
				APIGroups: []string{"*"},
				Resources: []string{"*"},
				Verbs:     []string{"get", "list", "watch"},
			},
		}
	default:
		crudVerbs := []string{"get", "list", "watch", "create", "update", "patch", "delete"}
		return []rbacv1.PolicyRule{
			{
				APIGroups: []string{""},
				Resources: []string{"pods", "services", "configmaps", "secrets"},
				Verbs:     crudVerbs,
			},
			{
				APIGroups: []string{"apps"},
				Resources: []string{"deployments", "statefulsets", "daemonsets"},
				Verbs:     crudVerbs,
			},
			{
				APIGroups: []string{"batch"},
				Resources: []string{"jobs", "cronjobs"},
				Verbs:     crudVerbs,
			},
		}
	}
}

// RoleName returns the per-team role object name for a policy role,
// e.g. "acme-viewer".
func RoleName(team string, role tenancyv1alpha1.UserRole) string {
	return fmt.Sprintf("%s-%s", team, Normalize(role))
}

// AllRoleNames returns the role object names for every catalog role of a team.
// Cleanup probes all of them because the prior role is not re-derived from status.
func AllRoleNames(team string) []string {
	names := make([]string, 0, len(Roles))
	for _, role := range Roles {
		names = append(names, RoleName(team, role))
	}
	return names
}

// BindingName returns the RoleBinding name granting roleName to a user,
// e.g. "alice-acme-viewer-binding".
func BindingName(user, roleName string) string {
	return fmt.Sprintf("%s-%s-%s", user, roleName, BindingSuffix)
}

// AdminGroupName returns the group granted team-wide admin access.
func AdminGroupName(team string) string {
	return fmt.Sprintf("%s-admins", team)
}

// AdminBindingName returns the RoleBinding name granting the admin group.
func AdminBindingName(team string) string {
	return fmt.Sprintf("%s-admin-%s", team, BindingSuffix)
}
