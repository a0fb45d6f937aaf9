package v1alpha1

// Label and annotation keys stamped onto downstream objects so they can be
// traced back to the owning Team or User record.
const (
	// LabelKeyTeam carries the owning team name on environment namespaces.
	LabelKeyTeam = "team"

	// LabelKeyEnvironment carries the environment name on environment namespaces.
	LabelKeyEnvironment = "environment"

	// LabelKeyManagedBy marks every object materialized by this operator.
	LabelKeyManagedBy = "managed-by"

	// ManagedByValue is the value of LabelKeyManagedBy.
	ManagedByValue = "tenancy-operator"

	// LabelKeyPurpose marks the shared identity namespace.
	LabelKeyPurpose = "purpose"

	// PurposeUserAccounts is the purpose label value of the identity namespace.
	PurposeUserAccounts = "user-accounts"

	// LabelKeyUser carries the owning user name on credential objects.
	LabelKeyUser = "user"

	// LabelKeyUserEmail carries the email-safe transform of the user's email
	// address ("@" -> "-at-", "." -> "-dot-") on the ServiceAccount.
	LabelKeyUserEmail = "user-email"

	// LabelKeyUserRole carries the policy role on the ServiceAccount.
	LabelKeyUserRole = "user-role"
)

const (
	// AnnotationKeyDescription carries the environment description on its namespace.
	AnnotationKeyDescription = "description"

	// AnnotationKeyFullName carries the user's full name on the ServiceAccount.
	AnnotationKeyFullName = "tenancy.t-caas.telekom.com/full-name"

	// AnnotationKeyEmail carries the user's email on the ServiceAccount.
	AnnotationKeyEmail = "tenancy.t-caas.telekom.com/email"

	// AnnotationKeyLastKubeconfigRequest records when the kubeconfig bundle was
	// last served to the user through the admin API.
	AnnotationKeyLastKubeconfigRequest = "tenancy.t-caas.telekom.com/last-kubeconfig-request"

	// AnnotationKeyServiceAccountName is the upstream annotation binding a token
	// Secret to its ServiceAccount.
	AnnotationKeyServiceAccountName = "kubernetes.io/service-account.name"
)
