package mirror

import (
	"context"
	"fmt"
)

// ChangeType distinguishes between kinds of remote document changes.
type ChangeType int

const (
	// Added indicates a document not previously in the collection.
	Added ChangeType = iota + 1
	// Modified indicates an overwrite of an existing document.
	Modified
	// Removed indicates a document deletion.
	Removed
)

// String returns the change type name for logs.
func (t ChangeType) String() string {
	switch t {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(t))
	}
}

// ChangeEvent is one entry in the remote change stream.
//
// LocalEcho is true when the event reflects a write this same client just
// issued, delivered before server confirmation. Echoes carry no new
// information and must be discarded by consumers.
type ChangeEvent struct {
	Type      ChangeType
	DocID     string
	Fields    map[string]any
	LocalEcho bool
}

// Client is the remote mirror boundary consumed by the sync engine.
type Client interface {
	// MintID generates a new unique document id without writing anything.
	// Cheap and local to the client.
	MintID() string

	// Set upserts the document with the given id. Failures are reported as
	// *WriteError; callers decide whether to propagate or discard them.
	Set(ctx context.Context, docID string, fields map[string]any) error

	// Delete removes the document with the given id. Same failure contract
	// as Set.
	Delete(ctx context.Context, docID string) error

	// Subscribe opens a long-lived change stream. Events arrive in delivery
	// order until the subscription is closed or ctx is cancelled; either
	// releases the underlying listener and closes the event channel.
	Subscribe(ctx context.Context) (*Subscription, error)
}

// WriteError reports a failed mirror write or delete.
//
// The sync engine's outbound path intentionally discards these (local state
// is the operation's success signal); the type exists so that the discard is
// explicit at the call site and assertable in tests.
type WriteError struct {
	Op    string // "set" | "delete"
	DocID string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("mirror %s %s: %v", e.Op, e.DocID, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
