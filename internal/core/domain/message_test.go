package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_UnmarshalDocumentEvent(t *testing.T) {
	raw := `{"type":"document_updated","data":{"id":"doc-1","filename":"a.pdf","status":"ready"},"timestamp":"2025-06-01T12:00:00Z"}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, MsgDocumentUpdated, env.Type)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), env.Timestamp)

	var doc Document
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, StatusReady, doc.Status)
}

func TestEnvelope_UnmarshalOperationConfirmed(t *testing.T) {
	raw := `{"type":"operation_confirmed","operation_id":"op-1","data":{"id":"doc-123"}}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, MsgOperationConfirmed, env.Type)
	assert.Equal(t, "op-1", env.OperationID)
	assert.NotEmpty(t, env.Data)
}

func TestNewOperationMessage_Create(t *testing.T) {
	doc := Document{ID: "temp-1", FileName: "a.pdf"}
	op := Operation{
		ID:         "op-1",
		Kind:       OperationCreate,
		Entity:     EntityDocument,
		DocumentID: "temp-1",
		Document:   &doc,
	}
	now := time.Now()

	msg := NewOperationMessage(op, now)

	assert.Equal(t, MsgOptimisticOperation, msg.Type)
	assert.Equal(t, "op-1", msg.OperationID)
	assert.Equal(t, OperationCreate, msg.OperationType)
	assert.Equal(t, EntityDocument, msg.Entity)
	assert.Equal(t, &doc, msg.Data)
	assert.Equal(t, now, msg.Timestamp)
}

func TestNewOperationMessage_UpdateCarriesIDAndPatch(t *testing.T) {
	op := Operation{
		ID:         "op-2",
		Kind:       OperationUpdate,
		Entity:     EntityDocument,
		DocumentID: "doc-1",
		Patch:      Patch{"tags": []string{"x"}},
	}

	msg := NewOperationMessage(op, time.Now())

	payload, ok := msg.Data.(Patch)
	require.True(t, ok)
	assert.Equal(t, "doc-1", payload["id"])
	assert.Equal(t, []string{"x"}, payload["tags"])
	// The original patch must not gain the id key.
	_, leaked := op.Patch["id"]
	assert.False(t, leaked)
}

func TestNewOperationMessage_DeleteCarriesID(t *testing.T) {
	op := Operation{
		ID:         "op-3",
		Kind:       OperationDelete,
		Entity:     EntityDocument,
		DocumentID: "doc-9",
	}

	msg := NewOperationMessage(op, time.Now())

	payload, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "doc-9", payload["id"])
}
