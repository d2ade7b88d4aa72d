package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
)

// resolutionHistory implements driven.ResolutionHistory.
type resolutionHistory struct {
	store *Store
}

var _ driven.ResolutionHistory = (*resolutionHistory)(nil)

// Append records a resolution. Records are never updated afterwards.
func (h *resolutionHistory) Append(ctx context.Context, res domain.Resolution) error {
	var resolvedJSON []byte
	if res.Resolved != nil {
		var err error
		resolvedJSON, err = json.Marshal(res.Resolved)
		if err != nil {
			return fmt.Errorf("marshalling resolved document: %w", err)
		}
	}

	resolvedAt := res.ResolvedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now().UTC()
	}

	_, err := h.store.db.ExecContext(ctx, `
		INSERT INTO resolutions (conflict_id, conflict_type, strategy, choice, resolved_document, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, res.ConflictID, string(res.ConflictType), string(res.Strategy), string(res.Choice),
		nullableString(resolvedJSON), resolvedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting resolution: %w", err)
	}
	return nil
}

// List returns the most recent resolutions, newest first. A non-positive
// limit returns all records.
func (h *resolutionHistory) List(ctx context.Context, limit int) ([]domain.Resolution, error) {
	query := `
		SELECT conflict_id, conflict_type, strategy, choice, resolved_document, resolved_at
		FROM resolutions
		ORDER BY resolved_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying resolutions: %w", err)
	}
	defer rows.Close()

	var resolutions []domain.Resolution //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			res          domain.Resolution
			conflictType string
			strategy     string
			choice       string
			resolvedJSON *string
		)
		if err := rows.Scan(&res.ConflictID, &conflictType, &strategy, &choice, &resolvedJSON, &res.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scanning resolution: %w", err)
		}
		res.ConflictType = domain.ConflictType(conflictType)
		res.Strategy = domain.ResolutionStrategy(strategy)
		res.Choice = domain.ResolutionChoice(choice)
		if resolvedJSON != nil && *resolvedJSON != "" {
			var doc domain.Document
			if err := json.Unmarshal([]byte(*resolvedJSON), &doc); err != nil {
				return nil, fmt.Errorf("unmarshalling resolved document: %w", err)
			}
			res.Resolved = &doc
		}
		resolutions = append(resolutions, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resolutions: %w", err)
	}
	return resolutions, nil
}

// nullableString converts an optional JSON payload to a nullable column value.
func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
