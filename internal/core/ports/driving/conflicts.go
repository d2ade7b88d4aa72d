package driving

import (
	"context"

	"github.com/custodia-labs/docbridge/internal/core/domain"
)

// ConflictManager exposes conflict inspection and resolution to the UI.
type ConflictManager interface {
	// ActiveConflicts returns the currently unresolved conflicts.
	ActiveConflicts() []domain.Conflict

	// Resolve settles one conflict with the given strategy. The resolved
	// patch is required for user_resolve and ignored otherwise; missing
	// data yields domain.ErrMissingResolutionData.
	Resolve(ctx context.Context, conflictID string, strategy domain.ResolutionStrategy, resolved domain.Patch) error

	// ResolveBatch settles several conflicts with one strategy,
	// best-effort. Failures are counted, not raised.
	ResolveBatch(ctx context.Context, conflictIDs []string, strategy domain.ResolutionStrategy) domain.BatchResult

	// Stats summarises resolver activity.
	Stats() domain.ConflictStats

	// History returns recorded resolutions, newest first.
	History(ctx context.Context, limit int) ([]domain.Resolution, error)
}
