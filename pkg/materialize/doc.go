// Package materialize contains the pure functions that turn an Environment
// spec or a (User, Team, Environment) triple into the desired downstream
// object definitions. Nothing in this package performs I/O; reconcilers feed
// the returned objects to the gateway.
package materialize
