package services

import (
	"context"
	"time"

	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
	"github.com/custodia-labs/docbridge/internal/core/ports/driving"
	"github.com/custodia-labs/docbridge/internal/logger"
)

// Ensure SyncCoordinator implements the interface.
var _ driving.RemoteEventHandler = (*SyncCoordinator)(nil)

// SyncCoordinator routes authoritative backend events into the cache,
// running conflict detection before any remote document change is applied.
// It is the only component that mutates the cache in response to the
// channel's inbound side.
type SyncCoordinator struct {
	cache     driven.DocumentCache
	mutator   driving.DocumentMutator
	resolver  *ConflictResolver
	snapshots driven.SnapshotStore
}

// NewSyncCoordinator creates a new sync coordinator. The snapshot store is
// optional; nil disables local persistence of the collection.
func NewSyncCoordinator(cache driven.DocumentCache, mutator driving.DocumentMutator, resolver *ConflictResolver, snapshots driven.SnapshotStore) *SyncCoordinator {
	return &SyncCoordinator{
		cache:     cache,
		mutator:   mutator,
		resolver:  resolver,
		snapshots: snapshots,
	}
}

// PrimeFromSnapshot loads the locally persisted collection into an empty
// cache so the UI has data before the first full sync arrives.
func (s *SyncCoordinator) PrimeFromSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	if len(s.cache.ListDocuments()) > 0 {
		return nil
	}
	docs, err := s.snapshots.LoadDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	s.cache.SetDocuments(docs)
	logger.Info("primed cache with %d documents from local snapshot", len(docs))
	return nil
}

// HandleDocumentsList replaces the whole collection with the backend's
// authoritative listing.
func (s *SyncCoordinator) HandleDocumentsList(docs []domain.Document) {
	logger.Info("full sync received: %d documents", len(docs))
	s.cache.SetDocuments(docs)
	s.persistSnapshot()
}

// HandleDocumentEvent ingests one authoritative document change. Detection
// runs first; the remote state only reaches the cache directly when no
// pending operation contradicts it, otherwise resolution decides.
func (s *SyncCoordinator) HandleDocumentEvent(kind driving.RemoteChangeKind, doc domain.Document, at time.Time) {
	if kind == driving.RemoteDeleted {
		s.cache.RemoveDocument(doc.ID)
		s.persistSnapshot()
		return
	}

	if !at.IsZero() && doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = at
	}

	conflicts := s.resolver.DetectConflicts(kind, doc)
	if len(conflicts) == 0 {
		s.cache.AddDocument(doc)
		s.persistSnapshot()
		return
	}

	// Conflicts left active after auto-resolution keep the whole local
	// optimistic state in the cache, including fields the pending
	// operation never touched. The remote revision travels on the
	// conflict and lands when the user settles it.
	s.resolver.AutoResolve(context.Background(), conflicts)
	s.persistSnapshot()
}

// HandleOperationConfirmed settles a pending operation with optional final
// data and retires any conflict bound to it.
func (s *SyncCoordinator) HandleOperationConfirmed(operationID string, final domain.Patch) {
	s.mutator.ConfirmOperation(operationID, final)
	s.resolver.RetireForOperation(operationID)
	s.persistSnapshot()
}

// HandleOperationFailed rolls a pending operation back and retires any
// conflict bound to it.
func (s *SyncCoordinator) HandleOperationFailed(operationID string) {
	s.mutator.RollbackOperation(operationID, "rejected by backend")
	s.resolver.RetireForOperation(operationID)
}

// HandleConnectionEstablished receives the backend's acknowledgment.
func (s *SyncCoordinator) HandleConnectionEstablished(message string) {
	logger.Info("connection established: %s", message)
}

// FlushSnapshot writes the current document collection to the snapshot
// store. Called on graceful shutdown so the next start primes from the
// latest state seen.
func (s *SyncCoordinator) FlushSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	return s.snapshots.SaveDocuments(ctx, s.cache.ListDocuments())
}

func (s *SyncCoordinator) persistSnapshot() {
	if s.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.snapshots.SaveDocuments(ctx, s.cache.ListDocuments()); err != nil {
		logger.Warn("persist document snapshot: %v", err)
	}
}
