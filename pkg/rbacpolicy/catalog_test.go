// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package rbacpolicy_test

import (
	"testing"

	. "github.com/onsi/gomega"

	tenancyv1alpha1 "github.com/telekom/tenancy-operator/api/tenancy/v1alpha1"
	"github.com/telekom/tenancy-operator/pkg/rbacpolicy"
)

func TestNormalize(t *testing.T) {
	g := NewWithT(t)

	g.Expect(rbacpolicy.Normalize(tenancyv1alpha1.UserRoleAdmin)).To(Equal(tenancyv1alpha1.UserRoleAdmin))
	g.Expect(rbacpolicy.Normalize(tenancyv1alpha1.UserRoleViewer)).To(Equal(tenancyv1alpha1.UserRoleViewer))
	g.Expect(rbacpolicy.Normalize("")).To(Equal(tenancyv1alpha1.UserRoleDeveloper))
	g.Expect(rbacpolicy.Normalize("operator")).To(Equal(tenancyv1alpha1.UserRoleDeveloper))
}

func TestRulesForAdmin(t *testing.T) {
	g := NewWithT(t)

	rules := rbacpolicy.RulesFor(tenancyv1alpha1.UserRoleAdmin)
	g.Expect(rules).To(HaveLen(1))
	g.Expect(rules[0].APIGroups).To(Equal([]string{"*"}))
	g.Expect(rules[0].Resources).To(Equal([]string{"*"}))
	g.Expect(rules[0].Verbs).To(Equal([]string{"*"}))
}

func TestRulesForViewer(t *testing.T) {
	g := NewWithT(t)

	rules := rbacpolicy.RulesFor(tenancyv1alpha1.UserRoleViewer)
	g.Expect(rules).To(HaveLen(1))
	g.Expect(rules[0].Verbs).To(Equal([]string{"get", "list", "watch"}))
}

func TestRulesForDeveloper(t *testing.T) {
	g := NewWithT(t)

	rules := rbacpolicy.RulesFor(tenancyv1alpha1.UserRoleDeveloper)
	g.Expect(rules).To(HaveLen(3))
	g.Expect(rules[0].APIGroups).To(Equal([]string{""}))
	g.Expect(rules[0].Resources).To(ContainElements("pods", "services", "configmaps", "secrets"))
	g.Expect(rules[1].APIGroups).To(Equal([]string{"apps"}))
	g.Expect(rules[2].APIGroups).To(Equal([]string{"batch"}))
	for _, rule := range rules {
		g.Expect(rule.Verbs).To(Equal([]string{"get", "list", "watch", "create", "update", "patch", "delete"}))
	}
}

func TestRulesForUnknownFallsBackToDeveloper(t *testing.T) {
	g := NewWithT(t)

	g.Expect(rbacpolicy.RulesFor("mystery")).To(Equal(rbacpolicy.RulesFor(tenancyv1alpha1.UserRoleDeveloper)))
}

func TestNames(t *testing.T) {
	g := NewWithT(t)

	g.Expect(rbacpolicy.RoleName("acme", tenancyv1alpha1.UserRoleViewer)).To(Equal("acme-viewer"))
	g.Expect(rbacpolicy.RoleName("acme", "unknown")).To(Equal("acme-developer"))
	g.Expect(rbacpolicy.AllRoleNames("acme")).To(Equal([]string{"acme-admin", "acme-developer", "acme-viewer"}))
	g.Expect(rbacpolicy.BindingName("alice", "acme-viewer")).To(Equal("alice-acme-viewer-binding"))
	g.Expect(rbacpolicy.AdminGroupName("acme")).To(Equal("acme-admins"))
	g.Expect(rbacpolicy.AdminBindingName("acme")).To(Equal("acme-admin-binding"))
}
