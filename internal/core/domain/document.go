package domain

import "time"

// DocumentStatus tracks a document through its processing lifecycle.
type DocumentStatus string

const (
	StatusUploading  DocumentStatus = "uploading"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
)

// TempIDPrefix marks provisional document ids minted locally for optimistic
// creates. Server-assigned ids never carry the prefix, so the two are
// distinguishable everywhere in the pipeline.
const TempIDPrefix = "temp-"

// Document represents a synchronised document record.
// Identity is the ID; every other field is mutable.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id"`

	// FileName is the current display filename.
	FileName string `json:"filename"`

	// OriginalName is the filename as uploaded, before any rename.
	OriginalName string `json:"original_name,omitempty"`

	// DocType classifies the document (e.g. "pdf", "docx").
	DocType string `json:"doctype,omitempty"`

	// Category is the user-assigned classification.
	Category string `json:"category,omitempty"`

	// FolderID references the folder containing this document.
	FolderID string `json:"folder_id,omitempty"`

	// Size is the document size in bytes.
	Size int64 `json:"size,omitempty"`

	// Status is the processing status.
	Status DocumentStatus `json:"status"`

	// ChunkCount is the number of text chunks extracted.
	ChunkCount int `json:"chunk_count,omitempty"`

	// VectorCount is the number of embedding vectors stored.
	VectorCount int `json:"vector_count,omitempty"`

	// Tags is a set of free-form labels. Order is not significant.
	Tags []string `json:"tags,omitempty"`

	// Visibility controls who can see the document (e.g. "private", "team").
	Visibility string `json:"visibility,omitempty"`

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any `json:"metadata,omitempty"`

	// UploadedAt is when the document was first stored. System field:
	// never merged, always taken from the authoritative side.
	UploadedAt time.Time `json:"uploaded_at,omitempty"`

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// IsTemp reports whether the document carries a locally minted provisional id.
func (d *Document) IsTemp() bool {
	return len(d.ID) >= len(TempIDPrefix) && d.ID[:len(TempIDPrefix)] == TempIDPrefix
}

// Clone returns a deep copy. Tags and Metadata are copied so mutations on
// the clone never leak into the original.
func (d *Document) Clone() Document {
	out := *d
	if d.Tags != nil {
		out.Tags = make([]string, len(d.Tags))
		copy(out.Tags, d.Tags)
	}
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Patch is a partial document update keyed by wire field name.
// It mirrors the JSON shape the backend exchanges for document_updated
// payloads, which keeps the changed-field set enumerable for conflict
// detection and merging.
type Patch map[string]any

// Clone returns a shallow copy of the patch.
func (p Patch) Clone() Patch {
	if p == nil {
		return nil
	}
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Apply merges the patch into the document. Unknown keys are ignored.
// System fields ("id", "uploaded_at") are never applied through a patch.
func (d *Document) Apply(p Patch) {
	for key, val := range p {
		switch key {
		case "filename":
			if s, ok := val.(string); ok {
				d.FileName = s
			}
		case "original_name":
			if s, ok := val.(string); ok {
				d.OriginalName = s
			}
		case "doctype":
			if s, ok := val.(string); ok {
				d.DocType = s
			}
		case "category":
			if s, ok := val.(string); ok {
				d.Category = s
			}
		case "folder_id":
			if s, ok := val.(string); ok {
				d.FolderID = s
			}
		case "size":
			switch n := val.(type) {
			case int64:
				d.Size = n
			case int:
				d.Size = int64(n)
			case float64:
				d.Size = int64(n)
			}
		case "status":
			switch s := val.(type) {
			case DocumentStatus:
				d.Status = s
			case string:
				d.Status = DocumentStatus(s)
			}
		case "chunk_count":
			if n, ok := asInt(val); ok {
				d.ChunkCount = n
			}
		case "vector_count":
			if n, ok := asInt(val); ok {
				d.VectorCount = n
			}
		case "tags":
			if tags, ok := asStringSlice(val); ok {
				d.Tags = tags
			}
		case "visibility":
			if s, ok := val.(string); ok {
				d.Visibility = s
			}
		case "metadata":
			if m, ok := val.(map[string]any); ok {
				d.Metadata = m
			}
		case "updated_at":
			if t, ok := asTime(val); ok {
				d.UpdatedAt = t
			}
		}
	}
}

// PatchFromDocument flattens a document into a full patch, excluding the
// system fields that must never travel through Apply.
func PatchFromDocument(d Document) Patch {
	p := Patch{
		"filename":   d.FileName,
		"status":     d.Status,
		"updated_at": d.UpdatedAt,
	}
	if d.OriginalName != "" {
		p["original_name"] = d.OriginalName
	}
	if d.DocType != "" {
		p["doctype"] = d.DocType
	}
	if d.Category != "" {
		p["category"] = d.Category
	}
	if d.FolderID != "" {
		p["folder_id"] = d.FolderID
	}
	if d.Size != 0 {
		p["size"] = d.Size
	}
	if d.ChunkCount != 0 {
		p["chunk_count"] = d.ChunkCount
	}
	if d.VectorCount != 0 {
		p["vector_count"] = d.VectorCount
	}
	if d.Tags != nil {
		p["tags"] = d.Tags
	}
	if d.Visibility != "" {
		p["visibility"] = d.Visibility
	}
	if d.Metadata != nil {
		p["metadata"] = d.Metadata
	}
	return p
}

func asInt(val any) (int, bool) {
	switch n := val.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asStringSlice(val any) ([]string, bool) {
	switch s := val.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, v := range s {
			str, ok := v.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

func asTime(val any) (time.Time, bool) {
	switch t := val.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}
