package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docbridge/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store := newTestStore(t)
	assert.NotEmpty(t, store.Path())
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening runs migrate again; already-applied versions are skipped.
	store, err = NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestResolutionHistory_AppendAndList(t *testing.T) {
	store := newTestStore(t)
	history := store.ResolutionHistory()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resolved := domain.Document{ID: "doc-1", FileName: "merged.pdf"}

	require.NoError(t, history.Append(ctx, domain.Resolution{
		ConflictID:   "c-1",
		ConflictType: domain.ConflictConcurrentEdit,
		Strategy:     domain.StrategyMergeChanges,
		Choice:       domain.ChoiceMerged,
		Resolved:     &resolved,
		ResolvedAt:   base,
	}))
	require.NoError(t, history.Append(ctx, domain.Resolution{
		ConflictID:   "c-2",
		ConflictType: domain.ConflictDeleteModified,
		Strategy:     domain.StrategyAcceptRemote,
		Choice:       domain.ChoiceRemote,
		ResolvedAt:   base.Add(time.Minute),
	}))

	records, err := history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "c-2", records[0].ConflictID)
	assert.Nil(t, records[0].Resolved)

	assert.Equal(t, "c-1", records[1].ConflictID)
	assert.Equal(t, domain.StrategyMergeChanges, records[1].Strategy)
	require.NotNil(t, records[1].Resolved)
	assert.Equal(t, "merged.pdf", records[1].Resolved.FileName)
}

func TestResolutionHistory_ListLimit(t *testing.T) {
	store := newTestStore(t)
	history := store.ResolutionHistory()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, history.Append(ctx, domain.Resolution{
			ConflictID:   "c",
			ConflictType: domain.ConflictConcurrentEdit,
			Strategy:     domain.StrategyAcceptLocal,
			ResolvedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := history.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	snapshots := store.SnapshotStore()
	ctx := context.Background()

	docs := []domain.Document{
		{ID: "doc-1", FileName: "a.pdf", Tags: []string{"q1"}, Status: domain.StatusReady},
		{ID: "doc-2", FileName: "b.pdf", Metadata: map[string]any{"pages": float64(3)}},
	}
	require.NoError(t, snapshots.SaveDocuments(ctx, docs))

	loaded, err := snapshots.LoadDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "a.pdf", loaded[0].FileName)
	assert.Equal(t, []string{"q1"}, loaded[0].Tags)
	assert.Equal(t, float64(3), loaded[1].Metadata["pages"])
}

func TestSnapshotStore_SaveReplaces(t *testing.T) {
	store := newTestStore(t)
	snapshots := store.SnapshotStore()
	ctx := context.Background()

	require.NoError(t, snapshots.SaveDocuments(ctx, []domain.Document{{ID: "old", FileName: "old.pdf"}}))
	require.NoError(t, snapshots.SaveDocuments(ctx, []domain.Document{{ID: "new", FileName: "new.pdf"}}))

	loaded, err := snapshots.LoadDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new", loaded[0].ID)
}

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	store := newTestStore(t)

	loaded, err := store.SnapshotStore().LoadDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
