// Package store is the SQLite-backed catalog of rendered query revisions.
//
// Every saved definition becomes a revision holding its canonical JSON, its
// fingerprint and the CAML it rendered to. Revisions are append-only and
// numbered per query by seq, a logical counter starting at 1. The queries
// table tracks the current revision of each name.
//
// # Ordering
//
// All reads order by seq ASC, id ASC COLLATE BINARY, never by wall time, so
// two catalogs built from the same saves list identically.
//
// # Idempotency
//
// Saving a definition whose fingerprint equals the latest revision of that
// name is a no-op that returns the existing revision.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
