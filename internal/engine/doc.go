// Package engine implements bidirectional synchronization between the local
// product store and the remote mirror.
//
// Outbound, user-originated mutations follow a fixed ordering: for a new
// product the remote key is minted first (no network write), the local store
// persists the row and assigns the local key, and only then is the remote
// write issued. A product is therefore never visible to reconciliation
// without a remote key, and the UI's perceived state is always at least as
// fresh as the remote. Remote write failures are swallowed by design: local
// persistence is the operation's success signal, and the mirror catches up
// on a later write or an external reconciliation.
//
// Inbound, the Run loop applies change events strictly in arrival order on a
// single goroutine. Events flagged as local echoes are discarded - that is
// the mechanism preventing a device's own writes from re-entering as
// phantom inserts. Everything else is reconciled against the local store by
// remote key: merge-preserving-local-key for adds and modifications,
// idempotent delete for removals. Last write observed wins; there is no
// conflict state.
package engine
