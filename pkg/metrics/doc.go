// Package metrics defines and registers Prometheus metrics for the
// tenancy-operator, covering reconciliation counts/durations, downstream
// object operations, and per-team inventory gauges.
package metrics
