package v1alpha1

import "github.com/telekom/tenancy-operator/pkg/conditions"

// TenancyConditionType represents tenancy-related condition types.
type TenancyConditionType = conditions.ConditionType

// TenancyConditionReason represents tenancy-related condition reasons.
type TenancyConditionReason = conditions.ConditionReason

// TenancyConditionMessage represents tenancy-related condition messages.
type TenancyConditionMessage = conditions.ConditionMessage

// kstatus-compliant condition types.
// See: https://github.com/kubernetes-sigs/cli-utils/blob/master/pkg/kstatus/README.md
const (
	// ReadyCondition indicates whether the resource is fully reconciled.
	ReadyCondition TenancyConditionType = "Ready"

	// ReconcilingCondition follows the "abnormal-true" pattern - present and
	// True while reconciliation is in progress, absent when complete.
	ReconcilingCondition TenancyConditionType = "Reconciling"

	// StalledCondition follows the "abnormal-true" pattern - present and True
	// when the controller hit an error it cannot recover from on its own.
	StalledCondition TenancyConditionType = "Stalled"
)

// Ready condition reasons and messages.
const (
	ReadyReasonReconciled  TenancyConditionReason  = "Reconciled"
	ReadyReasonFailed      TenancyConditionReason  = "Failed"
	ReadyMessageReconciled TenancyConditionMessage = "Resource is fully reconciled"
	ReadyMessageFailed     TenancyConditionMessage = "Reconciliation failed: %s"
)

// Finalizer-related condition constants.
const (
	FinalizerCondition TenancyConditionType    = "Finalizer"
	FinalizerReason    TenancyConditionReason  = "OrphanPrevention"
	FinalizerMessage   TenancyConditionMessage = "Set finalizer to prevent orphaned resources"
)

// Create related condition constants.
const (
	CreateCondition TenancyConditionType    = "Created"
	CreateReason    TenancyConditionReason  = "TriggeredCreate"
	CreateMessage   TenancyConditionMessage = "Reconciling creation request"
)

// Update related condition constants.
const (
	UpdateCondition TenancyConditionType    = "Updated"
	UpdateReason    TenancyConditionReason  = "TriggeredUpdate"
	UpdateMessage   TenancyConditionMessage = "Reconciling update request"
)

// Delete related condition constants.
const (
	DeleteCondition TenancyConditionType    = "Deleted"
	DeleteReason    TenancyConditionReason  = "TriggeredDelete"
	DeleteMessage   TenancyConditionMessage = "Reconciling deletion request"
)

// Credential bundle related condition constants.
const (
	CredentialsCondition TenancyConditionType    = "CredentialsIssued"
	CredentialsReason    TenancyConditionReason  = "KubeconfigAssembly"
	CredentialsMessage   TenancyConditionMessage = "Kubeconfig bundle issued for user"

	// CredentialsPendingReason is used when the token Secret is not yet
	// populated and assembly is retried on the next reconcile.
	CredentialsPendingReason  TenancyConditionReason  = "TokenNotPopulated"
	CredentialsPendingMessage TenancyConditionMessage = "Token secret not yet populated, kubeconfig assembly postponed"
)
