package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
	"github.com/custodia-labs/docbridge/internal/core/ports/driving"
	"github.com/custodia-labs/docbridge/internal/logger"
)

// Ensure OptimisticManager implements the interface.
var _ driving.DocumentMutator = (*OptimisticManager)(nil)

// OptimisticManager applies user mutations to the cache immediately and
// tracks each as a pending operation with a rollback descriptor, so the
// mutation can be undone if the backend rejects it.
//
// Send failures are not surfaced to the caller: the manager rolls the
// operation back, logs the failure and still returns the operation id.
type OptimisticManager struct {
	cache  driven.DocumentCache
	sender driven.OperationSender
	clock  driven.Clock
}

// NewOptimisticManager creates a new optimistic operation manager.
func NewOptimisticManager(cache driven.DocumentCache, sender driven.OperationSender, clock driven.Clock) *OptimisticManager {
	return &OptimisticManager{
		cache:  cache,
		sender: sender,
		clock:  clock,
	}
}

// CreateOptimistically inserts a provisional document under a minted temp
// id with status uploading and registers the pending operation.
func (m *OptimisticManager) CreateOptimistically(payload domain.Document) (string, error) {
	now := m.clock.Now()

	doc := payload.Clone()
	doc.ID = domain.TempIDPrefix + uuid.New().String()
	doc.Status = domain.StatusUploading
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = now
	}
	doc.UpdatedAt = now

	op := domain.Operation{
		ID:         uuid.New().String(),
		Kind:       domain.OperationCreate,
		Entity:     domain.EntityDocument,
		DocumentID: doc.ID,
		Document:   &doc,
		Rollback:   domain.Rollback{Kind: domain.RollbackRemove, DocumentID: doc.ID},
		CreatedAt:  now,
	}

	m.cache.AddDocument(doc)
	m.cache.AddOperation(op)
	logger.Debug("optimistic create %s issued for %s (%s)", op.ID, doc.ID, doc.FileName)

	m.send(op)
	return op.ID, nil
}

// UpdateOptimistically snapshots the current record, applies the patch and
// registers the pending operation.
func (m *OptimisticManager) UpdateOptimistically(id string, patch domain.Patch) (string, error) {
	current, ok := m.cache.GetDocument(id)
	if !ok {
		return "", fmt.Errorf("update document %s: %w", id, domain.ErrNotFound)
	}

	now := m.clock.Now()
	snapshot := current.Clone()

	op := domain.Operation{
		ID:         uuid.New().String(),
		Kind:       domain.OperationUpdate,
		Entity:     domain.EntityDocument,
		DocumentID: id,
		Patch:      patch.Clone(),
		Snapshot:   &snapshot,
		Rollback:   domain.Rollback{Kind: domain.RollbackRestore, Snapshot: &snapshot},
		CreatedAt:  now,
	}

	m.cache.UpdateDocument(id, patch)
	m.cache.AddOperation(op)
	logger.Debug("optimistic update %s issued for %s", op.ID, id)

	m.send(op)
	return op.ID, nil
}

// DeleteOptimistically snapshots and removes the record and registers the
// pending operation.
func (m *OptimisticManager) DeleteOptimistically(id string) (string, error) {
	current, ok := m.cache.GetDocument(id)
	if !ok {
		return "", fmt.Errorf("delete document %s: %w", id, domain.ErrNotFound)
	}

	now := m.clock.Now()
	snapshot := current.Clone()

	op := domain.Operation{
		ID:         uuid.New().String(),
		Kind:       domain.OperationDelete,
		Entity:     domain.EntityDocument,
		DocumentID: id,
		Document:   &snapshot,
		Snapshot:   &snapshot,
		Rollback:   domain.Rollback{Kind: domain.RollbackRestore, Snapshot: &snapshot},
		CreatedAt:  now,
	}

	m.cache.RemoveDocument(id)
	m.cache.AddOperation(op)
	logger.Debug("optimistic delete %s issued for %s", op.ID, id)

	m.send(op)
	return op.ID, nil
}

// ConfirmOperation settles a pending operation with optional final data
// from the backend. Unknown ids are ignored.
func (m *OptimisticManager) ConfirmOperation(id string, final domain.Patch) {
	op, ok := m.cache.GetOperation(id)
	if !ok {
		logger.Debug("confirmation for unknown operation %s ignored", id)
		return
	}

	switch op.Kind {
	case domain.OperationCreate:
		m.confirmCreate(op, final)
	case domain.OperationUpdate:
		if len(final) > 0 {
			m.cache.UpdateDocument(op.DocumentID, final)
		}
	case domain.OperationDelete:
		// The document is already gone from the cache.
	}

	m.cache.RemoveOperation(id)
	logger.Debug("operation %s confirmed", id)
}

// confirmCreate promotes a provisional document. If the backend assigned a
// final id, the temp record is atomically replaced under the new id.
func (m *OptimisticManager) confirmCreate(op *domain.Operation, final domain.Patch) {
	doc, ok := m.cache.GetDocument(op.DocumentID)
	if !ok {
		return
	}

	promoted := doc.Clone()
	promoted.Apply(final)
	if promoted.Status == domain.StatusUploading {
		promoted.Status = domain.StatusReady
	}

	finalID, _ := final["id"].(string)
	if finalID != "" && finalID != op.DocumentID {
		promoted.ID = finalID
		m.cache.RemoveDocument(op.DocumentID)
	}
	m.cache.AddDocument(promoted)
}

// RollbackOperation undoes a pending operation.
func (m *OptimisticManager) RollbackOperation(id, reason string) {
	logger.Debug("rolling back operation %s: %s", id, reason)
	m.cache.RollbackOperation(id)
}

// RollbackAll undoes every pending operation.
func (m *OptimisticManager) RollbackAll(reason string) {
	pending := m.cache.PendingOperations("")
	if len(pending) == 0 {
		return
	}
	logger.Warn("rolling back %d pending operations: %s", len(pending), reason)
	m.cache.RollbackAll()
}

// RunBatch executes operation-issuing closures in order. On the first
// error, operations issued earlier in the batch are rolled back in reverse
// order before the error propagates.
func (m *OptimisticManager) RunBatch(batch []func() (string, error)) ([]string, error) {
	issued := make([]string, 0, len(batch))
	for i, fn := range batch {
		id, err := fn()
		if err != nil {
			for j := len(issued) - 1; j >= 0; j-- {
				m.cache.RollbackOperation(issued[j])
			}
			return nil, fmt.Errorf("batch operation %d: %w", i, err)
		}
		issued = append(issued, id)
	}
	return issued, nil
}

// PendingOperations returns pending operations for a document, or all of
// them for an empty id.
func (m *OptimisticManager) PendingOperations(documentID string) []domain.Operation {
	return m.cache.PendingOperations(documentID)
}

// HasPendingOperations reports whether a document has pending operations.
func (m *OptimisticManager) HasPendingOperations(documentID string) bool {
	return m.cache.HasPendingOperations(documentID)
}

// send transmits the operation, rolling it back on failure. Delivery
// problems resolve through rollback rather than through the caller.
func (m *OptimisticManager) send(op domain.Operation) {
	if m.sender == nil {
		logger.Warn("no operation sender configured, rolling back %s", op.ID)
		m.cache.RollbackOperation(op.ID)
		return
	}
	if err := m.sender.SendOperation(op); err != nil {
		logger.Warn("send operation %s failed: %v, rolling back", op.ID, err)
		m.cache.RollbackOperation(op.ID)
	}
}
