// SPDX-FileCopyrightText: 2026 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

// Event reason constants for Kubernetes events emitted by the tenancy-operator
// controllers. These follow the convention of using PascalCase for event reasons.
// See: https://github.com/kubernetes/community/blob/master/contributors/devel/sig-instrumentation/events.md
const (
	// EventReasonFinalizer indicates a finalizer operation.
	EventReasonFinalizer = "Finalizer"

	// EventReasonCreate indicates a downstream resource was created.
	EventReasonCreate = "Create"

	// EventReasonUpdate indicates a downstream resource was updated.
	EventReasonUpdate = "Update"

	// EventReasonDeletion indicates a downstream resource deletion operation.
	EventReasonDeletion = "Deletion"

	// EventReasonNoEnvironments indicates a Team without environments was reconciled.
	EventReasonNoEnvironments = "NoEnvironments"

	// EventReasonNamespaceCollision indicates two environments fold to the same
	// namespace identifier; the later entry wins.
	EventReasonNamespaceCollision = "NamespaceCollision"

	// EventReasonTeamNotFound indicates a User references a Team that does not exist.
	EventReasonTeamNotFound = "TeamNotFound"

	// EventReasonCredentialsPending indicates the kubeconfig bundle could not be
	// assembled yet because the token secret is not populated.
	EventReasonCredentialsPending = "CredentialsPending"
)
