package driving

import (
	"time"

	"github.com/custodia-labs/docbridge/internal/core/domain"
)

// RemoteChangeKind identifies what happened to a document on the backend.
type RemoteChangeKind string

const (
	RemoteAdded   RemoteChangeKind = "added"
	RemoteUpdated RemoteChangeKind = "updated"
	RemoteDeleted RemoteChangeKind = "deleted"
)

// RemoteEventHandler is driven by the sync channel's inbound side. It is
// the single routing authority for authoritative backend events: the
// channel parses wire messages and calls exactly one of these methods per
// recognised message.
type RemoteEventHandler interface {
	// HandleDocumentsList replaces the whole collection (full sync).
	HandleDocumentsList(docs []domain.Document)

	// HandleDocumentEvent ingests one authoritative document change.
	// Conflict detection runs before the cache is touched.
	HandleDocumentEvent(kind RemoteChangeKind, doc domain.Document, at time.Time)

	// HandleOperationConfirmed settles a pending operation with optional
	// final data.
	HandleOperationConfirmed(operationID string, final domain.Patch)

	// HandleOperationFailed rolls a pending operation back.
	HandleOperationFailed(operationID string)

	// HandleConnectionEstablished receives the backend's acknowledgment.
	HandleConnectionEstablished(message string)
}
