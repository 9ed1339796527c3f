// Package store provides the SQLite-backed local product store.
//
// The store is the source of truth for the user-visible inventory:
//   - Full listing, ordered by name with French collation
//   - Lookup by local key (id) and by remote key (remote_id)
//   - Insert / update / delete / clear, each atomic per row
//   - A reactive watch that publishes a full snapshot after every mutation
//
// The remote_id column is the join key used by the sync engine to reconcile
// inbound mirror events against existing rows. The local id is never used
// for that purpose: it is store-local and means nothing on another device.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// A single connection is kept open (SQLite allows one writer at a time), so
// all operations are serialized at the driver level.
package store
