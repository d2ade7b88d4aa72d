package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docbridge/internal/core/domain"
)

func mergeFixture() (domain.Operation, domain.Document) {
	base := domain.Document{
		ID:       "doc-1",
		FileName: "report.pdf",
		DocType:  "pdf",
		Category: "finance",
		Tags:     []string{"q1"},
		Status:   domain.StatusReady,
	}
	snapshot := base.Clone()
	op := domain.Operation{
		ID:         "op-1",
		Kind:       domain.OperationUpdate,
		DocumentID: "doc-1",
		Snapshot:   &snapshot,
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	remote := base.Clone()
	return op, remote
}

func TestAutoMerge_DisjointFields(t *testing.T) {
	op, remote := mergeFixture()
	op.Patch = domain.Patch{"visibility": "team"}
	remote.ChunkCount = 42

	merged, err := autoMerge(op, remote)
	require.NoError(t, err)
	assert.Equal(t, "team", merged.Visibility)
	assert.Equal(t, 42, merged.ChunkCount)
}

func TestAutoMerge_TagsUnion(t *testing.T) {
	op, remote := mergeFixture()
	op.Patch = domain.Patch{"tags": []string{"q1", "local"}}
	remote.Tags = []string{"q1", "remote"}

	merged, err := autoMerge(op, remote)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "local", "remote"}, merged.Tags)
}

func TestAutoMerge_HighRiskConflictFails(t *testing.T) {
	op, remote := mergeFixture()
	op.Patch = domain.Patch{"filename": "local.pdf"}
	remote.FileName = "remote.pdf"

	_, err := autoMerge(op, remote)
	assert.Error(t, err)
}

func TestAutoMerge_LocalOnlyHighRiskChangeFails(t *testing.T) {
	op, remote := mergeFixture()
	op.Patch = domain.Patch{"filename": "new.pdf"}

	// The remote kept the old name, but renaming is still an explicit
	// user decision; it must not merge silently.
	_, err := autoMerge(op, remote)
	assert.Error(t, err)
}

func TestAutoMerge_IdenticalHighRiskChange(t *testing.T) {
	op, remote := mergeFixture()
	op.Patch = domain.Patch{"filename": "same.pdf"}
	remote.FileName = "same.pdf"

	merged, err := autoMerge(op, remote)
	require.NoError(t, err)
	assert.Equal(t, "same.pdf", merged.FileName)
}

func TestAutoMerge_SystemFieldsNeverMerged(t *testing.T) {
	op, remote := mergeFixture()
	op.Patch = domain.Patch{"id": "tampered", "uploaded_at": "2020-01-01T00:00:00Z", "visibility": "team"}

	merged, err := autoMerge(op, remote)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", merged.ID)
	assert.Equal(t, "team", merged.Visibility)
}

func TestAutoMerge_RequiresUpdateWithSnapshot(t *testing.T) {
	op, remote := mergeFixture()
	op.Kind = domain.OperationDelete

	_, err := autoMerge(op, remote)
	assert.Error(t, err)

	op.Kind = domain.OperationUpdate
	op.Snapshot = nil
	_, err = autoMerge(op, remote)
	assert.Error(t, err)
}

func TestUnionTags_PreservesOrder(t *testing.T) {
	got := unionTags([]string{"a", "b"}, []string{"b", "c", "a"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
