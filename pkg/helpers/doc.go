// Package helpers provides order-independent equality checks for RBAC and
// identity objects. The reconcilers use them to skip writes for objects that
// already match the desired state.
package helpers
