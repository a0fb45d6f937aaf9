// Package tenancy contains the reconciliation controllers for Team and User
// custom resources, managing the lifecycle of environment namespaces,
// ResourceQuotas, NetworkPolicies, Roles, RoleBindings, ServiceAccounts,
// token Secrets and kubeconfig ConfigMaps.
package tenancy
