package domain

import (
	"encoding/json"
	"time"
)

// MessageType is the wire discriminator for sync channel messages.
type MessageType string

// Inbound message types.
const (
	MsgDocumentsList         MessageType = "documents_list"
	MsgDocumentAdded         MessageType = "document_added"
	MsgDocumentUpdated       MessageType = "document_updated"
	MsgDocumentDeleted       MessageType = "document_deleted"
	MsgOperationConfirmed    MessageType = "operation_confirmed"
	MsgOperationFailed       MessageType = "operation_failed"
	MsgConnectionEstablished MessageType = "connection_established"
	MsgPong                  MessageType = "pong"
	MsgError                 MessageType = "error"
)

// Outbound message types.
const (
	MsgRequestDocuments    MessageType = "request_documents"
	MsgPing                MessageType = "ping"
	MsgOptimisticOperation MessageType = "optimistic_operation"
)

// Envelope is the generic inbound wire message. Data stays raw until the
// type is known; unrecognised or malformed envelopes are logged and dropped
// without disturbing the connection.
type Envelope struct {
	Type        MessageType     `json:"type"`
	Data        json.RawMessage `json:"data,omitempty"`
	OperationID string          `json:"operation_id,omitempty"`
	Message     string          `json:"message,omitempty"`
	Error       string          `json:"error,omitempty"`
	Timestamp   time.Time       `json:"timestamp,omitempty"`
}

// RequestMessage is the outbound control message shape (request_documents,
// ping).
type RequestMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// OperationMessage is the outbound optimistic_operation wire shape.
type OperationMessage struct {
	Type          MessageType   `json:"type"`
	OperationID   string        `json:"operation_id"`
	OperationType OperationKind `json:"operation_type"`
	Entity        string        `json:"entity"`
	Data          any           `json:"data"`
	Timestamp     time.Time     `json:"timestamp"`
}

// NewOperationMessage wraps a pending operation for transmission.
func NewOperationMessage(op Operation, now time.Time) OperationMessage {
	return OperationMessage{
		Type:          MsgOptimisticOperation,
		OperationID:   op.ID,
		OperationType: op.Kind,
		Entity:        op.Entity,
		Data:          op.WirePayload(),
		Timestamp:     now,
	}
}
