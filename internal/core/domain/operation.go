package domain

import "time"

// OperationKind identifies the mutation an optimistic operation performs.
type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

// EntityDocument is the only entity type currently synchronised.
const EntityDocument = "document"

// RollbackKind identifies how a rollback descriptor is interpreted.
type RollbackKind string

const (
	// RollbackRemove deletes the document inserted by the operation.
	RollbackRemove RollbackKind = "remove"

	// RollbackRestore reinstates the snapshot taken before the operation.
	RollbackRestore RollbackKind = "restore"
)

// Rollback is a data-only descriptor of how to undo an optimistic operation.
// It carries no live references, so it can be interpreted against any cache
// instance, persisted, or inspected in tests.
type Rollback struct {
	// Kind selects the interpretation.
	Kind RollbackKind

	// DocumentID is the id to remove for RollbackRemove.
	DocumentID string

	// Snapshot is the document to reinstate for RollbackRestore.
	Snapshot *Document
}

// Operation is a pending local mutation awaiting backend confirmation.
//
// Invariant: the Rollback descriptor, when applied, restores the cache to
// its pre-operation state for the target entity.
type Operation struct {
	// ID is the unique identifier for the operation.
	ID string

	// Kind is the mutation type.
	Kind OperationKind

	// Entity is the target entity type (currently always EntityDocument).
	Entity string

	// DocumentID is the id of the targeted document. For creates this is
	// the provisional temp id.
	DocumentID string

	// Document holds the provisional document for creates and the full
	// removed document for deletes.
	Document *Document

	// Patch holds the partial fields for updates.
	Patch Patch

	// Snapshot is the pre-operation state of the document, kept for
	// update rollbacks and conflict classification of deletes.
	Snapshot *Document

	// Rollback describes how to undo the cache mutation.
	Rollback Rollback

	// CreatedAt is when the operation was issued. Conflict detection
	// compares it against remote modification timestamps.
	CreatedAt time.Time
}

// WirePayload returns the data payload transmitted with the operation.
func (o *Operation) WirePayload() any {
	switch o.Kind {
	case OperationCreate:
		return o.Document
	case OperationUpdate:
		payload := o.Patch.Clone()
		if payload == nil {
			payload = Patch{}
		}
		payload["id"] = o.DocumentID
		return payload
	case OperationDelete:
		return map[string]any{"id": o.DocumentID}
	}
	return nil
}
