package v1alpha1

import (
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// TeamFinalizer guards environment teardown when a Team is deleted.
	TeamFinalizer = "team.tenancy.t-caas.telekom.com"
)

// EnvironmentQuota holds the hard resource limits applied to an environment
// namespace. Each field is a Kubernetes resource-amount string (e.g. "10", "20Gi").
// Empty fields fall back to the operator defaults.
type EnvironmentQuota struct {
	// Requested CPU for the whole namespace (requests.cpu).
	// +kubebuilder:validation:Optional
	CPU string `json:"cpu,omitempty"`

	// Requested memory for the whole namespace (requests.memory).
	// +kubebuilder:validation:Optional
	Memory string `json:"memory,omitempty"`

	// CPU limit for the whole namespace (limits.cpu).
	// +kubebuilder:validation:Optional
	CPULimit string `json:"cpuLimit,omitempty"`

	// Memory limit for the whole namespace (limits.memory).
	// +kubebuilder:validation:Optional
	MemoryLimit string `json:"memoryLimit,omitempty"`

	// Maximum number of pods in the namespace.
	// +kubebuilder:validation:Optional
	Pods string `json:"pods,omitempty"`

	// Maximum number of services in the namespace.
	// +kubebuilder:validation:Optional
	Services string `json:"services,omitempty"`
}

// EnvironmentNetworkPolicy carries the optional ingress/egress rule lists that
// are merged into the default-deny NetworkPolicy of an environment namespace.
type EnvironmentNetworkPolicy struct {
	// +kubebuilder:validation:Optional
	Ingress []networkingv1.NetworkPolicyIngressRule `json:"ingress,omitempty"`

	// +kubebuilder:validation:Optional
	Egress []networkingv1.NetworkPolicyEgressRule `json:"egress,omitempty"`
}

// Environment is one quota/network-isolated unit within a Team. It is
// materialized as the namespace lowercase(<team>-<name>).
type Environment struct {
	// Name of the environment, unique within the Team. Entries with an empty
	// name are skipped with a warning.
	// +kubebuilder:validation:Optional
	Name string `json:"name,omitempty"`

	// +kubebuilder:validation:Optional
	Description string `json:"description,omitempty"`

	// Additional labels merged into the namespace labels.
	// +kubebuilder:validation:Optional
	Labels map[string]string `json:"labels,omitempty"`

	// +kubebuilder:validation:Optional
	Quota EnvironmentQuota `json:"quota,omitempty"`

	// +kubebuilder:validation:Optional
	NetworkPolicy *EnvironmentNetworkPolicy `json:"networkPolicy,omitempty"`
}

// TeamSpec defines the desired state of Team
type TeamSpec struct {
	// +kubebuilder:validation:Optional
	Description string `json:"description,omitempty"`

	// Environments to provision for this team, in order.
	// +kubebuilder:validation:Optional
	Environments []Environment `json:"environments,omitempty"`
}

// Namespace provisioning states recorded in TeamStatus.
const (
	NamespaceStateCreated       = "created"
	NamespaceStateUpdated       = "updated"
	NamespaceStateAlreadyExists = "already_exists"
)

// ProvisionedNamespace records one namespace the reconciler has materialized
// for this Team. The status list is the only state the reconciler trusts when
// diffing desired against previous environments.
type ProvisionedNamespace struct {
	// Name is the canonical namespace identifier lowercase(<team>-<environment>).
	Name string `json:"name"`

	// Environment is the spec environment name this namespace belongs to.
	Environment string `json:"environment"`

	// +kubebuilder:validation:Optional
	Description string `json:"description,omitempty"`

	// State is one of created, updated, already_exists.
	// +kubebuilder:validation:Optional
	State string `json:"state,omitempty"`
}

// TeamStatus defines the observed state of Team
type TeamStatus struct {
	// +kubebuilder:validation:Optional
	EnvironmentsCreated int `json:"environmentsCreated,omitempty"`

	// +kubebuilder:validation:Optional
	EnvironmentsUpdated int `json:"environmentsUpdated,omitempty"`

	// +kubebuilder:validation:Optional
	EnvironmentsDeleted int `json:"environmentsDeleted,omitempty"`

	// Namespaces is the last-materialized set of namespace identifiers.
	// +kubebuilder:validation:Optional
	Namespaces []ProvisionedNamespace `json:"namespaces,omitempty"`

	// DeletedNamespaces lists namespaces garbage-collected by the last update.
	// +kubebuilder:validation:Optional
	DeletedNamespaces []string `json:"deletedNamespaces,omitempty"`

	// Conditions defines current service state of the Team.
	// +kubebuilder:validation:Optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:path=teams,scope=Cluster
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp",description="Time duration since creation of this Team"
// +kubebuilder:printcolumn:name="Environments",type="integer",JSONPath=".status.environmentsCreated",description="Number of environments provisioned for this Team"
// Team is the Schema for the teams API
type Team struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   TeamSpec   `json:"spec,omitempty"`
	Status TeamStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// TeamList contains a list of Team
type TeamList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Team `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Team{}, &TeamList{})
}

// Satisfy the generic Getter interface
func (t *Team) GetConditions() []metav1.Condition {
	return t.Status.Conditions
}

// Satisfy the generic Setter interface
func (t *Team) SetConditions(conditions []metav1.Condition) {
	t.Status.Conditions = conditions
}

// TrackedNamespaceNames returns the namespace identifiers recorded in status.
func (t *Team) TrackedNamespaceNames() []string {
	names := make([]string, 0, len(t.Status.Namespaces))
	for _, ns := range t.Status.Namespaces {
		if ns.Name != "" {
			names = append(names, ns.Name)
		}
	}
	return names
}
