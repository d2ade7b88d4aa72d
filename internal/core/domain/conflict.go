package domain

import "time"

// ConflictType classifies a detected contradiction between a pending local
// operation and an authoritative remote document state.
type ConflictType string

const (
	// ConflictConcurrentEdit: the remote document changed after the local
	// update was issued.
	ConflictConcurrentEdit ConflictType = "concurrent_edit"

	// ConflictDeleteModified: a locally deleted document was modified
	// remotely first.
	ConflictDeleteModified ConflictType = "delete_modified"

	// ConflictVersionMismatch: a remote document matches a pending create
	// by filename, suggesting a duplicate.
	ConflictVersionMismatch ConflictType = "version_mismatch"

	// ConflictStaleUpdate: the local update was issued against a version
	// the backend has since superseded.
	ConflictStaleUpdate ConflictType = "stale_update"
)

// ResolutionStrategy selects how a conflict is settled.
type ResolutionStrategy string

const (
	// StrategyAcceptLocal keeps the optimistic operation standing and
	// clears the conflict.
	StrategyAcceptLocal ResolutionStrategy = "accept_local"

	// StrategyAcceptRemote rolls the local operation back and forces the
	// cache to the remote state.
	StrategyAcceptRemote ResolutionStrategy = "accept_remote"

	// StrategyMergeChanges attempts an automatic field-level merge.
	StrategyMergeChanges ResolutionStrategy = "merge_changes"

	// StrategyUserResolve applies caller-supplied resolved data.
	StrategyUserResolve ResolutionStrategy = "user_resolve"
)

// ResolutionChoice records which side the user picked in a manual resolution.
type ResolutionChoice string

const (
	ChoiceLocal  ResolutionChoice = "local"
	ChoiceRemote ResolutionChoice = "remote"
	ChoiceMerged ResolutionChoice = "merged"
)

// Conflict is derived state, never persisted: it exists only while its
// originating pending operation is outstanding. Resolving or rolling back
// that operation retires the conflict.
type Conflict struct {
	// ID is the unique identifier for the conflict.
	ID string

	// Type is the classification.
	Type ConflictType

	// Operation is the offending pending operation.
	Operation Operation

	// Remote is the authoritative document that triggered detection.
	Remote Document

	// DetectedAt is when detection ran.
	DetectedAt time.Time

	// Description is a human-readable summary for the UI.
	Description string

	// Suggested is the advisory default strategy. Callers may override.
	Suggested ResolutionStrategy
}

// SuggestStrategy returns the advisory default strategy for a conflict type.
// Advisory only: nothing forces the caller to follow it.
func SuggestStrategy(t ConflictType) ResolutionStrategy {
	switch t {
	case ConflictConcurrentEdit, ConflictStaleUpdate:
		return StrategyMergeChanges
	case ConflictDeleteModified:
		return StrategyUserResolve
	case ConflictVersionMismatch:
		return StrategyAcceptRemote
	}
	return StrategyUserResolve
}

// Resolution is the append-only audit record of a settled conflict.
// Never mutated after creation.
type Resolution struct {
	// ConflictID references the retired conflict.
	ConflictID string

	// ConflictType is the classification the conflict carried.
	ConflictType ConflictType

	// Strategy is the strategy that settled it.
	Strategy ResolutionStrategy

	// Choice is the user's pick for manual resolutions, empty otherwise.
	Choice ResolutionChoice

	// Resolved is the document state the resolution produced, if any.
	Resolved *Document

	// ResolvedAt is when the resolution was recorded.
	ResolvedAt time.Time
}

// ConflictStats summarises resolver activity for observability surfaces.
type ConflictStats struct {
	// Active is the number of unresolved conflicts.
	Active int

	// Resolved is the total number of resolutions recorded.
	Resolved int

	// ByStrategy counts resolutions per strategy.
	ByStrategy map[ResolutionStrategy]int

	// SuccessRate is resolved / (resolved + active) x 100.
	SuccessRate float64
}

// BatchResult reports the outcome of a best-effort bulk resolution.
// Partial failures are counted, not raised.
type BatchResult struct {
	// Succeeded is the number of conflicts resolved.
	Succeeded int

	// Failed is the number of conflicts that could not be resolved.
	Failed int
}
