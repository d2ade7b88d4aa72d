package domain

import "time"

// SyncSettings holds the tunables for the sync channel and ingest watcher.
type SyncSettings struct {
	// ServerURL is the websocket endpoint of the backend sync service.
	ServerURL string

	// AuthToken is the bearer JWT presented when dialing.
	AuthToken string

	// HeartbeatInterval is how often a ping is sent while connected.
	HeartbeatInterval time.Duration

	// ReconnectBaseDelay is the first reconnect delay; each subsequent
	// attempt doubles it.
	ReconnectBaseDelay time.Duration

	// MaxReconnectAttempts bounds automatic reconnects before the channel
	// enters the error state.
	MaxReconnectAttempts int

	// HandshakeTimeout bounds the websocket dial.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each outbound write.
	WriteTimeout time.Duration

	// SendRate is the sustained outbound operations per second.
	SendRate float64

	// SendBurst is the outbound burst allowance.
	SendBurst int

	// WatchDir is the local drop directory observed by the ingest
	// watcher. Empty disables watching.
	WatchDir string

	// DataDir is where local persistence (snapshot, history) lives.
	// Empty selects the default under the user home.
	DataDir string
}

// DefaultSyncSettings returns sensible defaults for the sync channel.
func DefaultSyncSettings() SyncSettings {
	return SyncSettings{
		ServerURL:            "ws://localhost:8080/ws/documents",
		HeartbeatInterval:    30 * time.Second,
		ReconnectBaseDelay:   1 * time.Second,
		MaxReconnectAttempts: 5,
		HandshakeTimeout:     10 * time.Second,
		WriteTimeout:         10 * time.Second,
		SendRate:             10,
		SendBurst:            20,
	}
}
