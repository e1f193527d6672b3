// Package store provides the SQLite-backed sidecar store holding a
// document's snapshots.
//
// One store file exists per document, named by appending Suffix to the
// document path. It holds:
//   - snapshots: id, timestamp, comment (the only mutable field)
//   - blobs: the files captured by each snapshot, keyed by
//     (snapshot_id, relative_identity)
//   - store_meta: store id and creation time
//
// # Guarantees
//
// Atomic capture: Insert writes a snapshot row and all of its blob rows in
// one transaction, so a failed save is never visible.
//
// Ordering: snapshot IDs come from AUTOINCREMENT and are never reused;
// timestamps are forced strictly increasing, so both orders agree.
//
// Isolation: Delete removes only the rows of one snapshot. Blob rows are
// never updated after insert.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - user_version: schema version stamp; a mismatch refuses the store
//
// Blob content is zstd-compressed when that makes it smaller and verified
// against an xxh3 digest on every fetch.
package store
