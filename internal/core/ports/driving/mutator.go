package driving

import "github.com/custodia-labs/docbridge/internal/core/domain"

// DocumentMutator turns user intents into immediate cache mutations backed
// by tracked, reversible operations. All issuing methods return as soon as
// the synchronous cache mutation completes; confirmation and rollback
// arrive later through channel callbacks.
type DocumentMutator interface {
	// CreateOptimistically inserts a provisional document under a minted
	// temp id with status uploading, registers the pending operation and
	// returns its id.
	CreateOptimistically(payload domain.Document) (string, error)

	// UpdateOptimistically snapshots the current record, applies the
	// patch and registers the pending operation. Returns
	// domain.ErrNotFound, touching nothing, if the id is absent.
	UpdateOptimistically(id string, patch domain.Patch) (string, error)

	// DeleteOptimistically snapshots and removes the record and registers
	// the pending operation. Returns domain.ErrNotFound if absent.
	DeleteOptimistically(id string) (string, error)

	// ConfirmOperation settles a pending operation with optional final
	// data from the backend. For creates carrying a final id the temp
	// document is atomically replaced. Unknown ids are a no-op - the
	// confirmation/rollback race is expected.
	ConfirmOperation(id string, final domain.Patch)

	// RollbackOperation undoes a pending operation, logging the reason.
	RollbackOperation(id, reason string)

	// RollbackAll undoes every pending operation, logging the reason.
	RollbackAll(reason string)

	// RunBatch executes operation-issuing closures in order. If any
	// returns an error, operations issued earlier in the batch are rolled
	// back before the error propagates: all-or-nothing at the
	// client-visible level.
	RunBatch(batch []func() (string, error)) ([]string, error)

	// PendingOperations returns pending operations for a document, or all
	// of them for an empty id.
	PendingOperations(documentID string) []domain.Operation

	// HasPendingOperations reports whether a document has pending
	// operations.
	HasPendingOperations(documentID string) bool
}
