// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Class is the uniform classification of a remote object-store error.
type Class int

const (
	// ClassOK means the operation succeeded.
	ClassOK Class = iota

	// ClassNotFound means the object is absent. Expected during idempotent
	// convergence and never an error.
	ClassNotFound

	// ClassConflict means the object already exists or the write raced with a
	// concurrent one. Expected during idempotent creation and treated as success.
	ClassConflict

	// ClassTransient means a network or server-side hiccup. The whole reconcile
	// is eligible for a substrate-level retry.
	ClassTransient

	// ClassPermanent means the reconciler cannot recover on its own. The current
	// reconcile aborts and the failure is surfaced on the resource status.
	ClassPermanent
)

// String returns the class name for logging and metrics labels.
func (c Class) String() string {
	switch c {
	case ClassOK:
		return "ok"
	case ClassNotFound:
		return "not_found"
	case ClassConflict:
		return "conflict"
	case ClassTransient:
		return "transient"
	default:
		return "permanent"
	}
}

// Classify maps an object-store error to its uniform class. Call sites choose
// tolerate/retry/abort from the class instead of matching status codes ad hoc.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassOK
	case apierrors.IsNotFound(err):
		return ClassNotFound
	case apierrors.IsAlreadyExists(err), apierrors.IsConflict(err):
		return ClassConflict
	case apierrors.IsServerTimeout(err),
		apierrors.IsTimeout(err),
		apierrors.IsTooManyRequests(err),
		apierrors.IsServiceUnavailable(err),
		apierrors.IsInternalError(err),
		apierrors.IsUnexpectedServerError(err):
		return ClassTransient
	default:
		return ClassPermanent
	}
}
