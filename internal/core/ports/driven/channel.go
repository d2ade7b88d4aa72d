package driven

import (
	"context"

	"github.com/custodia-labs/docbridge/internal/core/domain"
)

// OperationSender transmits optimistic operations to the backend.
// The optimistic manager depends on this narrow slice of the channel.
type OperationSender interface {
	// SendOperation serialises and sends a pending operation.
	// Returns domain.ErrNotConnected when the channel is not open - the
	// caller then rolls the operation back instead of leaving it pending
	// against a channel that cannot deliver it.
	SendOperation(op domain.Operation) error
}

// Channel is the persistent bidirectional event connection to the backend.
type Channel interface {
	OperationSender

	// Connect dials the backend and starts the read and heartbeat loops.
	// Reconnection on unexpected close is automatic until the reconnect
	// budget is spent.
	Connect(ctx context.Context) error

	// Disconnect closes the channel with a normal-closure code, cancels
	// any scheduled reconnect, stops the heartbeat and resets connection
	// state. This path takes priority over all retry logic.
	Disconnect()

	// Info returns a snapshot of the connection state.
	Info() domain.ConnectionInfo
}
