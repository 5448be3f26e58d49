// Package wfstore provides concrete wfgraph.Engine backends: an
// in-memory implementation for tests and short-lived processes, and
// SQL-backed implementations (SQLite, MySQL) for durable token
// persistence.
//
// Every backend persists the same thing: the lifecycle of node-tokens
// and arc-tokens (created, completed) and their attributes, keyed by
// process id. The interpreter in package wfgraph never reads this
// persisted state back during a single run — the in-memory
// wfgraph.Process is authoritative for the duration of a call to
// Start — so these backends exist for audit trails, crash recovery,
// and cross-process resumption tooling built on top of this package.
package wfstore

import "errors"

// ErrNotFound is returned when a lookup by process, node-token, or
// arc-token id finds nothing.
var ErrNotFound = errors.New("wfstore: not found")
