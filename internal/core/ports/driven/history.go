package driven

import (
	"context"

	"github.com/custodia-labs/docbridge/internal/core/domain"
)

// ResolutionHistory is the append-only audit trail of conflict resolutions.
// Records are never mutated after creation.
type ResolutionHistory interface {
	// Append records a resolution.
	Append(ctx context.Context, res domain.Resolution) error

	// List returns the most recent resolutions, newest first, up to limit.
	// A non-positive limit returns all records.
	List(ctx context.Context, limit int) ([]domain.Resolution, error)
}

// SnapshotStore persists the document collection locally so the cache can
// be primed before the first full sync arrives.
type SnapshotStore interface {
	// SaveDocuments replaces the stored snapshot.
	SaveDocuments(ctx context.Context, docs []domain.Document) error

	// LoadDocuments returns the stored snapshot.
	LoadDocuments(ctx context.Context) ([]domain.Document, error)
}
