package driven

import "github.com/custodia-labs/docbridge/internal/core/domain"

// DocumentCache is the single source of truth for the document collection
// and the pending-operation table.
//
// The surface is purely synchronous: every call runs to completion before
// returning, and every mutating call notifies subscribers before it
// returns. The cache owns no network logic.
type DocumentCache interface {
	// AddDocument inserts a document. An existing entry with the same id
	// is replaced - idempotent upsert, no error.
	AddDocument(doc domain.Document)

	// UpdateDocument merges patch fields into the existing record.
	// Documented no-op if the id is absent; callers for whom absence is
	// meaningful must check existence first.
	UpdateDocument(id string, patch domain.Patch)

	// RemoveDocument deletes if present, no-op otherwise.
	RemoveDocument(id string)

	// SetDocuments replaces the entire collection (full-sync on connect).
	SetDocuments(docs []domain.Document)

	// GetDocument retrieves a deep copy of a document by id.
	GetDocument(id string) (*domain.Document, bool)

	// ListDocuments returns a copy of the full collection.
	ListDocuments() []domain.Document

	// AddOperation registers a pending optimistic operation.
	AddOperation(op domain.Operation)

	// RemoveOperation drops a pending operation without applying its
	// rollback. Calling it twice with the same id is safe.
	RemoveOperation(id string)

	// GetOperation retrieves a pending operation by id.
	GetOperation(id string) (*domain.Operation, bool)

	// PendingOperations returns pending operations targeting a document,
	// in issuance order. An empty documentID returns all of them.
	PendingOperations(documentID string) []domain.Operation

	// HasPendingOperations reports whether any operation targets the
	// document.
	HasPendingOperations(documentID string) bool

	// RollbackOperation applies the operation's rollback descriptor, then
	// removes it from the pending table. Unknown ids are logged and
	// ignored: races between confirmation and rollback are expected and
	// non-fatal.
	RollbackOperation(id string)

	// RollbackAll rolls back every pending operation, newest first, so
	// overlapping single-entity histories unwind like a stack.
	RollbackAll()

	// SetConnected records channel connectivity for UI consumption.
	SetConnected(connected bool)

	// Connected reports the recorded channel connectivity.
	Connected() bool

	// Subscribe registers an observer invoked synchronously after every
	// mutation. The returned function unsubscribes.
	Subscribe(fn func(domain.CacheEvent)) (unsubscribe func())
}
