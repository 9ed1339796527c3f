package mirror

import (
	"context"
	"sort"
	"sync"
)

// Collection is an in-process document collection shared by any number of
// connected clients. It backs tests, the seedable demo mode, and
// multi-device scenarios.
//
// Semantics mirror a document store SDK with latency compensation: a
// connection observes its own writes immediately, flagged LocalEcho, while
// other connections observe them as authoritative changes.
type Collection struct {
	mu   sync.Mutex
	docs map[string]map[string]any
	subs map[*Subscription]*Conn // subscription -> owning connection
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{
		docs: make(map[string]map[string]any),
		subs: make(map[*Subscription]*Conn),
	}
}

// Len returns the number of documents currently in the collection.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Get returns a copy of the document with the given id.
func (c *Collection) Get(docID string) (map[string]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[docID]
	if !ok {
		return nil, false
	}
	return copyFields(doc), true
}

// Conn is one logical device's client for the collection.
// Implements Client.
type Conn struct {
	coll *Collection
	ids  IDGenerator
}

// ConnOption configures a connection.
type ConnOption func(*Conn)

// WithIDGenerator replaces the default UUIDv7 id generator.
// Tests use this with FixedIDGenerator for deterministic document keys.
func WithIDGenerator(g IDGenerator) ConnOption {
	return func(conn *Conn) {
		conn.ids = g
	}
}

// Connect returns a new client connection to the collection.
func (c *Collection) Connect(opts ...ConnOption) *Conn {
	conn := &Conn{coll: c, ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(conn)
	}
	return conn
}

// MintID generates a new document id without touching the collection.
func (conn *Conn) MintID() string {
	return conn.ids.Generate()
}

// Set upserts a document and broadcasts the change to all subscriptions.
func (conn *Conn) Set(ctx context.Context, docID string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Op: "set", DocID: docID, Err: err}
	}

	c := conn.coll
	c.mu.Lock()
	defer c.mu.Unlock()

	typ := Added
	if _, exists := c.docs[docID]; exists {
		typ = Modified
	}
	stored := copyFields(fields)
	c.docs[docID] = stored

	c.broadcast(conn, ChangeEvent{Type: typ, DocID: docID, Fields: copyFields(stored)})
	return nil
}

// Delete removes a document. Deleting an absent document is a no-op and
// emits no event.
func (conn *Conn) Delete(ctx context.Context, docID string) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Op: "delete", DocID: docID, Err: err}
	}

	c := conn.coll
	c.mu.Lock()
	defer c.mu.Unlock()

	last, exists := c.docs[docID]
	if !exists {
		return nil
	}
	delete(c.docs, docID)

	c.broadcast(conn, ChangeEvent{Type: Removed, DocID: docID, Fields: copyFields(last)})
	return nil
}

// Subscribe opens a change stream. The subscription first receives Added
// events for every document already in the collection (in id order, the way
// a snapshot listener delivers initial state), then live changes in arrival
// order.
func (conn *Conn) Subscribe(ctx context.Context) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := conn.coll
	c.mu.Lock()
	defer c.mu.Unlock()

	var sub *Subscription
	sub = newSubscription(func() { c.remove(sub) })
	c.subs[sub] = conn

	ids := make([]string, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		sub.q.enqueue(ChangeEvent{Type: Added, DocID: id, Fields: copyFields(c.docs[id])})
	}

	go sub.pump(ctx)
	return sub, nil
}

// broadcast fans an event out to every subscription. Callers hold c.mu, so
// events reach all subscription queues in one global order.
func (c *Collection) broadcast(origin *Conn, ev ChangeEvent) {
	for sub, owner := range c.subs {
		delivered := ev
		delivered.LocalEcho = owner == origin
		sub.q.enqueue(delivered)
	}
}

// remove deregisters a subscription. Called from Subscription.Close; must
// not be called with c.mu held.
func (c *Collection) remove(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, sub)
}

func copyFields(fields map[string]any) map[string]any {
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return cp
}
