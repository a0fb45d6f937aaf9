// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

// Package conditions maintains metav1.Condition lists on Team and User status.
// Polarity follows kstatus: Ready reflects convergence, Stalled is
// abnormal-true, and the lifecycle markers (Created/Updated/Deleted) record
// which reconcile path last handled the resource. The condition vocabulary
// itself lives with the API types.
package conditions

import (
	"fmt"

	apimeta "k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConditionType identifies a condition on a tenancy resource.
type ConditionType string

// ConditionReason is the machine-readable reason of a condition.
type ConditionReason string

// ConditionMessage is a printf-style format for the human-readable message.
type ConditionMessage string

// Object is a resource carrying a conditions list on its status.
type Object interface {
	GetConditions() []metav1.Condition
	SetConditions([]metav1.Condition)
}

// MarkTrue sets or updates the condition with status True. The message format
// is applied to args.
func MarkTrue(obj Object, t ConditionType, gen int64, reason ConditionReason, message ConditionMessage, args ...interface{}) {
	set(obj, t, metav1.ConditionTrue, gen, reason, message, args...)
}

// MarkFalse sets or updates the condition with status False. The message
// format is applied to args.
func MarkFalse(obj Object, t ConditionType, gen int64, reason ConditionReason, message ConditionMessage, args ...interface{}) {
	set(obj, t, metav1.ConditionFalse, gen, reason, message, args...)
}

// Delete removes the condition of the given type, if present.
func Delete(obj Object, t ConditionType) {
	conds := obj.GetConditions()
	if apimeta.RemoveStatusCondition(&conds, string(t)) {
		obj.SetConditions(conds)
	}
}

// Get returns the condition of the given type, or nil.
func Get(obj Object, t ConditionType) *metav1.Condition {
	return apimeta.FindStatusCondition(obj.GetConditions(), string(t))
}

// Has reports whether a condition of the given type is present.
func Has(obj Object, t ConditionType) bool {
	return Get(obj, t) != nil
}

// IsTrue reports whether the condition is present with status True.
func IsTrue(obj Object, t ConditionType) bool {
	return apimeta.IsStatusConditionTrue(obj.GetConditions(), string(t))
}

// IsFalse reports whether the condition is present with status False.
func IsFalse(obj Object, t ConditionType) bool {
	return apimeta.IsStatusConditionFalse(obj.GetConditions(), string(t))
}

// set delegates to the apimachinery helper so LastTransitionTime only moves
// when the status actually flips.
func set(obj Object, t ConditionType, status metav1.ConditionStatus, gen int64, reason ConditionReason, message ConditionMessage, args ...interface{}) {
	conds := obj.GetConditions()
	apimeta.SetStatusCondition(&conds, metav1.Condition{
		Type:               string(t),
		Status:             status,
		ObservedGeneration: gen,
		Reason:             string(reason),
		Message:            fmt.Sprintf(string(message), args...),
	})
	obj.SetConditions(conds)
}
