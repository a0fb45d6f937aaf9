// Package gateway wraps the cluster object store behind a small synchronous
// interface with tri-state outcomes. Reconcilers use it for every downstream
// read/write so that NotFound and AlreadyExists are handled uniformly during
// idempotent convergence instead of being pattern-matched at each call site.
package gateway
