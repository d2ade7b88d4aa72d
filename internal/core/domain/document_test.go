package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_IsTemp(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"temp id", "temp-123", true},
		{"server id", "doc-123", false},
		{"empty id", "", false},
		{"prefix only", "temp-", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{ID: tt.id}
			assert.Equal(t, tt.want, doc.IsTemp())
		})
	}
}

func TestDocument_Clone_DeepCopies(t *testing.T) {
	original := Document{
		ID:       "doc-1",
		FileName: "a.pdf",
		Tags:     []string{"x", "y"},
		Metadata: map[string]any{"author": "jane"},
	}

	clone := original.Clone()
	clone.Tags[0] = "z"
	clone.Metadata["author"] = "john"

	assert.Equal(t, "x", original.Tags[0])
	assert.Equal(t, "jane", original.Metadata["author"])
}

func TestDocument_Clone_NilCollections(t *testing.T) {
	original := Document{ID: "doc-1"}

	clone := original.Clone()

	assert.Nil(t, clone.Tags)
	assert.Nil(t, clone.Metadata)
}

func TestDocument_Apply_KnownFields(t *testing.T) {
	doc := Document{ID: "doc-1", FileName: "old.pdf", Status: StatusReady}

	doc.Apply(Patch{
		"filename":     "new.pdf",
		"category":     "reports",
		"status":       "processing",
		"chunk_count":  7,
		"vector_count": float64(3), // JSON numbers decode as float64
		"tags":         []any{"a", "b"},
		"size":         float64(1024),
	})

	assert.Equal(t, "new.pdf", doc.FileName)
	assert.Equal(t, "reports", doc.Category)
	assert.Equal(t, StatusProcessing, doc.Status)
	assert.Equal(t, 7, doc.ChunkCount)
	assert.Equal(t, 3, doc.VectorCount)
	assert.Equal(t, []string{"a", "b"}, doc.Tags)
	assert.Equal(t, int64(1024), doc.Size)
}

func TestDocument_Apply_IgnoresSystemAndUnknownFields(t *testing.T) {
	uploaded := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := Document{ID: "doc-1", UploadedAt: uploaded}

	doc.Apply(Patch{
		"id":          "doc-2",
		"uploaded_at": time.Now(),
		"nonsense":    42,
	})

	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, uploaded, doc.UploadedAt)
}

func TestDocument_Apply_UpdatedAtFromString(t *testing.T) {
	doc := Document{ID: "doc-1"}

	doc.Apply(Patch{"updated_at": "2025-06-01T12:00:00Z"})

	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), doc.UpdatedAt)
}

func TestDocument_Apply_WrongTypesIgnored(t *testing.T) {
	doc := Document{ID: "doc-1", FileName: "keep.pdf", ChunkCount: 5}

	doc.Apply(Patch{
		"filename":    42,
		"chunk_count": "seven",
		"tags":        []any{"ok", 3},
	})

	assert.Equal(t, "keep.pdf", doc.FileName)
	assert.Equal(t, 5, doc.ChunkCount)
	assert.Nil(t, doc.Tags)
}

func TestPatchFromDocument_RoundTrip(t *testing.T) {
	src := Document{
		ID:         "doc-1",
		FileName:   "a.pdf",
		Category:   "reports",
		Status:     StatusReady,
		ChunkCount: 4,
		Tags:       []string{"x"},
		UpdatedAt:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	var dst Document
	dst.ID = "doc-1"
	dst.Apply(PatchFromDocument(src))

	assert.Equal(t, src.FileName, dst.FileName)
	assert.Equal(t, src.Category, dst.Category)
	assert.Equal(t, src.Status, dst.Status)
	assert.Equal(t, src.ChunkCount, dst.ChunkCount)
	assert.Equal(t, src.Tags, dst.Tags)
	assert.Equal(t, src.UpdatedAt, dst.UpdatedAt)
}

func TestPatchFromDocument_OmitsSystemIdentity(t *testing.T) {
	p := PatchFromDocument(Document{ID: "doc-1", UploadedAt: time.Now()})

	_, hasID := p["id"]
	_, hasUploaded := p["uploaded_at"]
	require.False(t, hasID)
	require.False(t, hasUploaded)
}

func TestPatch_Clone(t *testing.T) {
	p := Patch{"filename": "a.pdf"}

	clone := p.Clone()
	clone["filename"] = "b.pdf"

	assert.Equal(t, "a.pdf", p["filename"])
	assert.Nil(t, Patch(nil).Clone())
}
