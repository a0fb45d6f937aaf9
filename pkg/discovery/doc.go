// Package discovery waits for the operator's CustomResourceDefinitions to be
// installed and established before the controllers start, so a fresh cluster
// does not flood the logs with informer errors during rollout.
package discovery
