package domain

import "time"

// ConnectionState is the sync channel's lifecycle state.
//
// Transitions: disconnected -> connecting -> connected; connected ->
// disconnected on close; any state -> error on failed connect or exhausted
// reconnect budget; error/disconnected -> connecting on a reconnect attempt.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)

// ConnectionInfo is a snapshot of the channel's connection state.
// Process-wide, single instance, advanced by the channel's lifecycle
// callbacks and reset on manual disconnect.
type ConnectionInfo struct {
	// State is the current lifecycle state.
	State ConnectionState

	// ReconnectAttempts counts consecutive reconnects since the last
	// successful connection.
	ReconnectAttempts int

	// LastSyncAt is when the last full document list was received.
	LastSyncAt time.Time
}
