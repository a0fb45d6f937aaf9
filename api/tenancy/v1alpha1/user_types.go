package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// UserFinalizer guards RBAC and credential teardown when a User is deleted.
	UserFinalizer = "user.tenancy.t-caas.telekom.com"
)

// UserRole is the policy role of a user, mapped to a fixed RBAC rule set.
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleDeveloper UserRole = "developer"
	UserRoleViewer    UserRole = "viewer"
)

// UserSpec defines the desired state of User
type UserSpec struct {
	// +kubebuilder:validation:Optional
	FullName string `json:"fullName,omitempty"`

	// +kubebuilder:validation:Optional
	Email string `json:"email,omitempty"`

	// Role determines the RBAC rule set granted in every team environment.
	// An unrecognized value defaults to developer.
	// +kubebuilder:validation:Optional
	// +kubebuilder:validation:Enum=admin;developer;viewer
	Role UserRole `json:"role,omitempty"`

	// Teams is the set of Team names this user belongs to.
	// +kubebuilder:validation:Optional
	Teams []string `json:"teams,omitempty"`
}

// UserStatus defines the observed state of User
type UserStatus struct {
	// IdentityCreated is true once the ServiceAccount and token Secret exist.
	// +kubebuilder:validation:Optional
	IdentityCreated bool `json:"identityCreated,omitempty"`

	// KubeconfigCreated is true once the kubeconfig bundle has been issued.
	// +kubebuilder:validation:Optional
	KubeconfigCreated bool `json:"kubeconfigCreated,omitempty"`

	// Teams is the last-materialized set of team memberships, the only state
	// the reconciler trusts when diffing memberships on update.
	// +kubebuilder:validation:Optional
	Teams []string `json:"teams,omitempty"`

	// +kubebuilder:validation:Optional
	TeamsAdded []string `json:"teamsAdded,omitempty"`

	// +kubebuilder:validation:Optional
	TeamsRemoved []string `json:"teamsRemoved,omitempty"`

	// Conditions defines current service state of the User.
	// +kubebuilder:validation:Optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:path=users,scope=Cluster
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp",description="Time duration since creation of this User"
// +kubebuilder:printcolumn:name="Role",type="string",JSONPath=".spec.role",description="Policy role of this User"
// +kubebuilder:printcolumn:name="Identity",type="boolean",JSONPath=".status.identityCreated",description="Whether the cluster identity for this User exists"
// User is the Schema for the users API
type User struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   UserSpec   `json:"spec,omitempty"`
	Status UserStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// UserList contains a list of User
type UserList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []User `json:"items"`
}

func init() {
	SchemeBuilder.Register(&User{}, &UserList{})
}

// Satisfy the generic Getter interface
func (u *User) GetConditions() []metav1.Condition {
	return u.Status.Conditions
}

// Satisfy the generic Setter interface
func (u *User) SetConditions(conditions []metav1.Condition) {
	u.Status.Conditions = conditions
}
