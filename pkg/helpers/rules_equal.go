// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package helpers

import (
	"slices"
	"sort"
	"strings"

	rbacv1 "k8s.io/api/rbac/v1"
)

// PolicyRulesEqual reports whether two rule sets grant the same permissions.
// Ordering within a rule's fields and across rules is ignored. The input
// slices are not mutated.
func PolicyRulesEqual(a, b []rbacv1.PolicyRule) bool {
	if len(a) != len(b) {
		return false
	}
	ak := make([]string, len(a))
	bk := make([]string, len(b))
	for i := range a {
		ak[i] = policyRuleKey(a[i])
		bk[i] = policyRuleKey(b[i])
	}
	sort.Strings(ak)
	sort.Strings(bk)
	return slices.Equal(ak, bk)
}

func policyRuleKey(r rbacv1.PolicyRule) string {
	return strings.Join([]string{
		joinSorted(r.APIGroups),
		joinSorted(r.Resources),
		joinSorted(r.Verbs),
		joinSorted(r.ResourceNames),
		joinSorted(r.NonResourceURLs),
	}, ";")
}

func joinSorted(s []string) string {
	c := slices.Clone(s)
	sort.Strings(c)
	return strings.Join(c, ",")
}
