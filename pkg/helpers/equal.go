// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package helpers

import (
	"slices"
	"strings"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	"k8s.io/utils/ptr"
)

// RoleBindsEqual reports whether an existing RoleBinding already matches the
// expected one in name, namespace, labels, role reference and subjects.
func RoleBindsEqual(existing, expected *rbacv1.RoleBinding) bool {
	return existing.Name == expected.Name &&
		existing.Namespace == expected.Namespace &&
		mapsEqual(existing.Labels, expected.Labels) &&
		existing.RoleRef == expected.RoleRef &&
		SubjectsEqual(existing.Subjects, expected.Subjects)
}

// ServiceAccountsEqual reports whether an existing ServiceAccount already
// carries the expected identity metadata. Token secret references are not
// compared, the control plane manages those.
func ServiceAccountsEqual(existing, expected *corev1.ServiceAccount) bool {
	return existing.Name == expected.Name &&
		existing.Namespace == expected.Namespace &&
		mapsEqual(existing.Labels, expected.Labels) &&
		mapsEqual(existing.Annotations, expected.Annotations) &&
		ptr.Equal(existing.AutomountServiceAccountToken, expected.AutomountServiceAccountToken)
}

// SubjectsEqual compares two subject slices independent of ordering.
// The input slices are not mutated.
func SubjectsEqual(a, b []rbacv1.Subject) bool {
	if len(a) != len(b) {
		return false
	}
	ac := slices.Clone(a)
	bc := slices.Clone(b)
	bySubjectKey := func(x, y rbacv1.Subject) int {
		return strings.Compare(subjectKey(x), subjectKey(y))
	}
	slices.SortFunc(ac, bySubjectKey)
	slices.SortFunc(bc, bySubjectKey)
	return slices.Equal(ac, bc)
}

func subjectKey(s rbacv1.Subject) string {
	return s.Kind + "|" + s.APIGroup + "|" + s.Namespace + "|" + s.Name
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for key, valA := range a {
		valB, exists := b[key]
		if !exists || valA != valB {
			return false
		}
	}
	return true
}
