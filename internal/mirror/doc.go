// Package mirror defines the boundary to the remote product document
// collection and an in-process implementation of it.
//
// The sync engine depends only on the Client interface: mint a document id
// without writing, upsert or delete by id, and subscribe to a long-lived
// ordered stream of change events. Events carry a LocalEcho flag marking
// latency-compensated reflections of this client's own writes; the engine
// must never treat those as authoritative inbound changes.
//
// Collection implements the boundary in process. Each Connect() models one
// device's client: a connection's writes are delivered to its own
// subscriptions with LocalEcho set and to every other connection's
// subscriptions without it, reproducing the latency-compensation semantics
// of a real document store SDK. The wire protocol of a networked mirror is
// deliberately outside this package.
package mirror
