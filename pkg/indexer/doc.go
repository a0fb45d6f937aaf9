// Package indexer registers controller-runtime field indexes on User resources
// (by Spec.Teams) to enable efficient cache lookups when mapping Team changes
// to the affected users.
package indexer
