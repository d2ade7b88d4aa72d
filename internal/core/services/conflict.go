package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
	"github.com/custodia-labs/docbridge/internal/core/ports/driving"
	"github.com/custodia-labs/docbridge/internal/logger"
)

// Ensure ConflictResolver implements the interface.
var _ driving.ConflictManager = (*ConflictResolver)(nil)

// ConflictResolver detects contradictions between pending optimistic
// operations and authoritative remote document states, classifies them and
// settles them with the chosen strategy.
//
// Conflicts are derived state held in memory. Resolutions are appended to
// the history store when one is configured.
type ConflictResolver struct {
	cache   driven.DocumentCache
	mutator driving.DocumentMutator
	clock   driven.Clock
	history driven.ResolutionHistory

	mu       sync.RWMutex
	active   map[string]domain.Conflict
	resolved int
	byStrat  map[domain.ResolutionStrategy]int
}

// NewConflictResolver creates a new conflict resolver. The history store
// is optional; nil disables the audit trail.
func NewConflictResolver(cache driven.DocumentCache, mutator driving.DocumentMutator, clock driven.Clock, history driven.ResolutionHistory) *ConflictResolver {
	return &ConflictResolver{
		cache:   cache,
		mutator: mutator,
		clock:   clock,
		history: history,
		active:  make(map[string]domain.Conflict),
		byStrat: make(map[domain.ResolutionStrategy]int),
	}
}

// DetectConflicts classifies the pending operations contradicted by an
// authoritative remote change and registers the resulting conflicts.
// It returns the newly detected conflicts; an empty slice means the remote
// change can be applied to the cache as-is.
func (r *ConflictResolver) DetectConflicts(kind driving.RemoteChangeKind, remote domain.Document) []domain.Conflict {
	var detected []domain.Conflict

	for _, op := range r.cache.PendingOperations(remote.ID) {
		if c, ok := r.classify(op, kind, remote); ok {
			detected = append(detected, c)
		}
	}

	// A remote add can collide with a pending create by filename even
	// though the ids differ: the backend may have ingested the same file
	// through another client.
	if kind == driving.RemoteAdded {
		for _, op := range r.cache.PendingOperations("") {
			if op.Kind == domain.OperationCreate && op.Document != nil && op.Document.FileName == remote.FileName {
				detected = append(detected, r.newConflict(domain.ConflictVersionMismatch, op, remote,
					fmt.Sprintf("remote document %q duplicates pending upload %q", remote.ID, op.DocumentID)))
			}
		}
	}

	if len(detected) == 0 {
		return nil
	}

	r.mu.Lock()
	for _, c := range detected {
		r.active[c.ID] = c
	}
	r.mu.Unlock()

	for _, c := range detected {
		logger.Warn("conflict %s detected: %s (%s)", c.ID, c.Type, c.Description)
	}
	return detected
}

// classify matches one pending operation against a remote change.
func (r *ConflictResolver) classify(op domain.Operation, kind driving.RemoteChangeKind, remote domain.Document) (domain.Conflict, bool) {
	switch op.Kind {
	case domain.OperationUpdate:
		if kind != driving.RemoteUpdated {
			return domain.Conflict{}, false
		}
		// A remote revision stamped exactly at the operation's issue time
		// is neither newer nor stale; no conflict.
		switch {
		case remote.UpdatedAt.After(op.CreatedAt):
			return r.newConflict(domain.ConflictConcurrentEdit, op, remote,
				fmt.Sprintf("document %q changed remotely while a local update was pending", op.DocumentID)), true
		case !remote.UpdatedAt.IsZero() && remote.UpdatedAt.Before(op.CreatedAt):
			return r.newConflict(domain.ConflictStaleUpdate, op, remote,
				fmt.Sprintf("local update to %q raced an older remote revision", op.DocumentID)), true
		}
		return domain.Conflict{}, false

	case domain.OperationDelete:
		if kind != driving.RemoteUpdated {
			return domain.Conflict{}, false
		}
		if op.Snapshot != nil && !substantiveChange(*op.Snapshot, remote) {
			return domain.Conflict{}, false
		}
		return r.newConflict(domain.ConflictDeleteModified, op, remote,
			fmt.Sprintf("document %q was modified remotely after being deleted locally", op.DocumentID)), true
	}
	return domain.Conflict{}, false
}

// substantiveChange reports whether the remote revision differs from the
// snapshot in a field a user would care about having deleted: processing
// status, chunk and vector counts, tags or category. Timestamp-only churn
// does not contradict a pending delete.
func substantiveChange(snapshot, remote domain.Document) bool {
	return snapshot.Status != remote.Status ||
		snapshot.ChunkCount != remote.ChunkCount ||
		snapshot.VectorCount != remote.VectorCount ||
		snapshot.Category != remote.Category ||
		!equalTagSets(snapshot.Tags, remote.Tags)
}

// equalTagSets compares tag slices as sets; tag order is not significant.
func equalTagSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, tag := range a {
		seen[tag] = true
	}
	for _, tag := range b {
		if !seen[tag] {
			return false
		}
	}
	return true
}

func (r *ConflictResolver) newConflict(t domain.ConflictType, op domain.Operation, remote domain.Document, desc string) domain.Conflict {
	return domain.Conflict{
		ID:          uuid.New().String(),
		Type:        t,
		Operation:   op,
		Remote:      remote.Clone(),
		DetectedAt:  r.clock.Now(),
		Description: desc,
		Suggested:   domain.SuggestStrategy(t),
	}
}

// AutoResolve attempts an automatic merge for the conflicts whose
// suggested strategy is merge_changes (stale updates and concurrent
// edits). Every other type stays active until the caller settles it
// explicitly; in particular a version_mismatch must never roll back a
// pending upload on its own. Failed merges leave the conflict active
// with the suggestion escalated to user_resolve.
func (r *ConflictResolver) AutoResolve(ctx context.Context, conflicts []domain.Conflict) {
	for _, c := range conflicts {
		if c.Suggested != domain.StrategyMergeChanges {
			continue
		}
		if err := r.Resolve(ctx, c.ID, c.Suggested, nil); err != nil {
			logger.Warn("auto-resolution of conflict %s failed: %v, awaiting user", c.ID, err)
			r.mu.Lock()
			if cur, ok := r.active[c.ID]; ok {
				cur.Suggested = domain.StrategyUserResolve
				r.active[c.ID] = cur
			}
			r.mu.Unlock()
		}
	}
}

// ActiveConflicts returns the currently unresolved conflicts, oldest first.
func (r *ConflictResolver) ActiveConflicts() []domain.Conflict {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Conflict, 0, len(r.active))
	for _, c := range r.active {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].DetectedAt.Before(out[j].DetectedAt)
	})
	return out
}

// Resolve settles one conflict with the given strategy.
func (r *ConflictResolver) Resolve(ctx context.Context, conflictID string, strategy domain.ResolutionStrategy, resolved domain.Patch) error {
	r.mu.RLock()
	c, ok := r.active[conflictID]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("conflict %s: %w", conflictID, domain.ErrConflictNotFound)
	}

	res := domain.Resolution{
		ConflictID:   c.ID,
		ConflictType: c.Type,
		Strategy:     strategy,
		ResolvedAt:   r.clock.Now(),
	}

	switch strategy {
	case domain.StrategyAcceptLocal:
		// The optimistic operation stands; the backend's confirmation or
		// failure will settle it through the usual path.
		res.Choice = domain.ChoiceLocal

	case domain.StrategyAcceptRemote:
		r.mutator.RollbackOperation(c.Operation.ID, "conflict resolved in favour of remote")
		remote := c.Remote.Clone()
		r.cache.AddDocument(remote)
		res.Choice = domain.ChoiceRemote
		res.Resolved = &remote

	case domain.StrategyMergeChanges:
		merged, err := autoMerge(c.Operation, c.Remote)
		if err != nil {
			return fmt.Errorf("resolve conflict %s: %w", conflictID, err)
		}
		r.mutator.ConfirmOperation(c.Operation.ID, domain.PatchFromDocument(merged))
		r.cache.AddDocument(merged)
		res.Choice = domain.ChoiceMerged
		res.Resolved = &merged

	case domain.StrategyUserResolve:
		if len(resolved) == 0 {
			return fmt.Errorf("resolve conflict %s: %w", conflictID, domain.ErrMissingResolutionData)
		}
		final := c.Remote.Clone()
		final.Apply(resolved)
		patch := domain.PatchFromDocument(final)
		if c.Operation.Kind == domain.OperationCreate {
			// Settling a duplicate upload replaces the provisional record
			// under the remote id instead of stranding it beside the final.
			patch["id"] = final.ID
		}
		r.mutator.ConfirmOperation(c.Operation.ID, patch)
		r.cache.AddDocument(final)
		res.Choice = domain.ChoiceMerged
		res.Resolved = &final

	default:
		return fmt.Errorf("resolve conflict %s: unknown strategy %q: %w", conflictID, strategy, domain.ErrInvalidInput)
	}

	r.retire(c.ID, strategy)
	r.record(ctx, res)
	logger.Info("conflict %s resolved with %s", c.ID, strategy)
	return nil
}

// ResolveBatch settles several conflicts with one strategy, best-effort.
func (r *ConflictResolver) ResolveBatch(ctx context.Context, conflictIDs []string, strategy domain.ResolutionStrategy) domain.BatchResult {
	var result domain.BatchResult
	for _, id := range conflictIDs {
		if err := r.Resolve(ctx, id, strategy, nil); err != nil {
			logger.Warn("batch resolution of %s failed: %v", id, err)
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	return result
}

// Stats summarises resolver activity.
func (r *ConflictResolver) Stats() domain.ConflictStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.ConflictStats{
		Active:     len(r.active),
		Resolved:   r.resolved,
		ByStrategy: make(map[domain.ResolutionStrategy]int, len(r.byStrat)),
	}
	for s, n := range r.byStrat {
		stats.ByStrategy[s] = n
	}
	if total := stats.Resolved + stats.Active; total > 0 {
		stats.SuccessRate = float64(stats.Resolved) / float64(total) * 100
	}
	return stats
}

// History returns recorded resolutions, newest first.
func (r *ConflictResolver) History(ctx context.Context, limit int) ([]domain.Resolution, error) {
	if r.history == nil {
		return nil, nil
	}
	return r.history.List(ctx, limit)
}

// RetireForOperation drops any active conflict bound to a pending
// operation that was settled through another path.
func (r *ConflictResolver) RetireForOperation(operationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.active {
		if c.Operation.ID == operationID {
			delete(r.active, id)
			logger.Debug("conflict %s retired with operation %s", id, operationID)
		}
	}
}

func (r *ConflictResolver) retire(conflictID string, strategy domain.ResolutionStrategy) {
	r.mu.Lock()
	delete(r.active, conflictID)
	r.resolved++
	r.byStrat[strategy]++
	r.mu.Unlock()
}

func (r *ConflictResolver) record(ctx context.Context, res domain.Resolution) {
	if r.history == nil {
		return
	}
	if err := r.history.Append(ctx, res); err != nil {
		logger.Warn("record resolution for conflict %s: %v", res.ConflictID, err)
	}
}

