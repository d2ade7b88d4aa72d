package domain

// CacheEventKind identifies what changed in the document cache.
type CacheEventKind string

const (
	EventDocumentAdded    CacheEventKind = "document_added"
	EventDocumentUpdated  CacheEventKind = "document_updated"
	EventDocumentRemoved  CacheEventKind = "document_removed"
	EventDocumentsReset   CacheEventKind = "documents_reset"
	EventOperationAdded   CacheEventKind = "operation_added"
	EventOperationRemoved CacheEventKind = "operation_removed"
	EventConnectionChange CacheEventKind = "connection_change"
)

// CacheEvent is delivered synchronously to cache subscribers after every
// mutating call, so dependent surfaces can re-render.
type CacheEvent struct {
	// Kind is what changed.
	Kind CacheEventKind

	// DocumentID is set for document events.
	DocumentID string

	// OperationID is set for pending-operation events.
	OperationID string

	// Connected is set for connection events.
	Connected bool
}
