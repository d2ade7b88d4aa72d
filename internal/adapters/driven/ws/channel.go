// Package ws implements the sync channel over a websocket connection.
//
// The channel owns the connection lifecycle: dialing, the read loop, the
// heartbeat, and exponential-backoff reconnection. Inbound messages are
// parsed and routed to the RemoteEventHandler; malformed
// payloads are logged and dropped without disturbing the connection.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driven"
	"github.com/custodia-labs/docbridge/internal/core/ports/driving"
	"github.com/custodia-labs/docbridge/internal/logger"
)

// Ensure Channel implements the interface.
var _ driven.Channel = (*Channel)(nil)

// Channel is the websocket implementation of the sync channel.
type Channel struct {
	settings domain.SyncSettings
	handler  driving.RemoteEventHandler
	cache    driven.DocumentCache
	clock    driven.Clock
	limiter  *rate.Limiter

	mu       sync.Mutex
	conn     *websocket.Conn
	state    domain.ConnectionState
	attempts int
	lastSync time.Time
	manual   bool
	retry    driven.Timer
}

// NewChannel creates a sync channel. Connect must be called to open it.
func NewChannel(settings domain.SyncSettings, handler driving.RemoteEventHandler, cache driven.DocumentCache, clock driven.Clock) *Channel {
	return &Channel{
		settings: settings,
		handler:  handler,
		cache:    cache,
		clock:    clock,
		limiter:  rate.NewLimiter(rate.Limit(settings.SendRate), settings.SendBurst),
		state:    domain.StateDisconnected,
	}
}

// Connect dials the backend and starts the read and heartbeat loops.
// A dial failure schedules a reconnect and returns the dial error, so the
// caller knows the first attempt did not go through.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == domain.StateConnected || c.state == domain.StateConnecting {
		c.mu.Unlock()
		return nil
	}
	c.manual = false
	c.state = domain.StateConnecting
	c.mu.Unlock()

	return c.dial(ctx)
}

func (c *Channel) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.settings.HandshakeTimeout}

	header := http.Header{}
	if c.settings.AuthToken != "" {
		header.Set("Authorization", "Bearer "+c.settings.AuthToken)
	}

	logger.Debug("dialing %s", c.settings.ServerURL)
	conn, _, err := dialer.DialContext(ctx, c.settings.ServerURL, header)
	if err != nil {
		c.mu.Lock()
		c.state = domain.StateError
		c.mu.Unlock()
		c.scheduleReconnect(ctx)
		return fmt.Errorf("dial %s: %w", c.settings.ServerURL, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.state = domain.StateConnected
	c.attempts = 0
	c.lastSync = c.clock.Now()
	c.mu.Unlock()

	c.cache.SetConnected(true)
	logger.Info("sync channel connected to %s", c.settings.ServerURL)

	// The ticker is created here rather than inside the goroutine so the
	// heartbeat schedule is armed before Connect returns.
	ticker := c.clock.NewTicker(c.settings.HeartbeatInterval)
	go c.readLoop(ctx, conn)
	go c.heartbeat(conn, ticker)

	// Ask for the authoritative collection straight away.
	if err := c.writeJSON(conn, domain.RequestMessage{Type: domain.MsgRequestDocuments, Timestamp: c.clock.Now()}); err != nil {
		logger.Warn("request documents: %v", err)
	}
	return nil
}

// Disconnect closes the channel with a normal-closure code and suppresses
// any scheduled reconnect. Manual disconnection always wins over retry
// logic.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	c.manual = true
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	conn := c.conn
	c.conn = nil
	c.state = domain.StateDisconnected
	c.attempts = 0
	c.mu.Unlock()

	if conn != nil {
		deadline := c.clock.Now().Add(c.settings.WriteTimeout)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
			logger.Debug("close message: %v", err)
		}
		conn.Close()
	}
	c.cache.SetConnected(false)
	logger.Info("sync channel disconnected")
}

// SendOperation serialises and sends a pending operation, subject to the
// outbound rate limit.
func (c *Channel) SendOperation(op domain.Operation) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == domain.StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		return domain.ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.settings.WriteTimeout)
	defer cancel()
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("send rate limit: %w", err)
	}

	msg := domain.NewOperationMessage(op, c.clock.Now())
	if err := c.writeJSON(conn, msg); err != nil {
		return fmt.Errorf("send operation %s: %w", op.ID, err)
	}
	logger.Debug("sent %s operation %s", op.Kind, op.ID)
	return nil
}

// Info returns a snapshot of the connection state.
func (c *Channel) Info() domain.ConnectionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.ConnectionInfo{
		State:             c.state,
		ReconnectAttempts: c.attempts,
		LastSyncAt:        c.lastSync,
	}
}

// writeJSON serialises under the write deadline. Writes are serialised by
// the mutex: gorilla connections permit one concurrent writer.
func (c *Channel) writeJSON(conn *websocket.Conn, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// readLoop consumes inbound messages until the connection drops. An
// unexpected drop triggers reconnection; a manual disconnect ends the loop
// quietly.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			manual := c.manual || c.conn != conn
			if !manual {
				c.conn = nil
				c.state = domain.StateDisconnected
			}
			c.mu.Unlock()

			if manual {
				return
			}
			logger.Warn("sync channel read: %v", err)
			c.cache.SetConnected(false)
			c.scheduleReconnect(ctx)
			return
		}
		c.handleMessage(payload)
	}
}

// heartbeat sends a ping every interval while the connection is current.
func (c *Channel) heartbeat(conn *websocket.Conn, ticker driven.Ticker) {
	defer ticker.Stop()

	for range ticker.C() {
		c.mu.Lock()
		current := c.conn == conn && c.state == domain.StateConnected
		c.mu.Unlock()
		if !current {
			return
		}
		if err := c.writeJSON(conn, domain.RequestMessage{Type: domain.MsgPing, Timestamp: c.clock.Now()}); err != nil {
			logger.Warn("heartbeat: %v", err)
			return
		}
	}
}

// scheduleReconnect arms the backoff timer for the next dial attempt.
// The delay doubles with each consecutive failure.
func (c *Channel) scheduleReconnect(ctx context.Context) {
	c.mu.Lock()
	if c.manual {
		c.mu.Unlock()
		return
	}
	if c.attempts >= c.settings.MaxReconnectAttempts {
		c.state = domain.StateError
		c.mu.Unlock()
		logger.Warn("reconnect budget exhausted after %d attempts: %v", c.settings.MaxReconnectAttempts, domain.ErrReconnectExhausted)
		return
	}
	delay := c.settings.ReconnectBaseDelay << c.attempts
	c.attempts++
	attempt := c.attempts
	timer := c.clock.NewTimer(delay)
	c.retry = timer
	c.mu.Unlock()

	logger.Info("reconnect attempt %d in %s", attempt, delay)

	go func() {
		select {
		case <-timer.C():
		case <-ctx.Done():
			timer.Stop()
			return
		}

		c.mu.Lock()
		if c.manual {
			c.mu.Unlock()
			return
		}
		c.state = domain.StateConnecting
		c.mu.Unlock()

		if err := c.dial(ctx); err != nil {
			logger.Debug("reconnect attempt %d failed: %v", attempt, err)
		}
	}()
}

// handleMessage parses and routes one inbound payload. Anything malformed
// is logged and dropped.
func (c *Channel) handleMessage(payload []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		logger.Warn("malformed sync message dropped: %v", err)
		return
	}

	switch env.Type {
	case domain.MsgDocumentsList:
		var docs []domain.Document
		if err := json.Unmarshal(env.Data, &docs); err != nil {
			logger.Warn("malformed documents_list dropped: %v", err)
			return
		}
		c.touchSync()
		c.handler.HandleDocumentsList(docs)

	case domain.MsgDocumentAdded, domain.MsgDocumentUpdated, domain.MsgDocumentDeleted:
		var doc domain.Document
		if err := json.Unmarshal(env.Data, &doc); err != nil {
			logger.Warn("malformed %s dropped: %v", env.Type, err)
			return
		}
		c.touchSync()
		c.handler.HandleDocumentEvent(changeKind(env.Type), doc, env.Timestamp)

	case domain.MsgOperationConfirmed:
		var final domain.Patch
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &final); err != nil {
				logger.Warn("malformed confirmation data for %s dropped: %v", env.OperationID, err)
				final = nil
			}
		}
		c.touchSync()
		c.handler.HandleOperationConfirmed(env.OperationID, final)

	case domain.MsgOperationFailed:
		logger.Warn("operation %s failed remotely: %s", env.OperationID, env.Error)
		c.handler.HandleOperationFailed(env.OperationID)

	case domain.MsgConnectionEstablished:
		c.handler.HandleConnectionEstablished(env.Message)

	case domain.MsgPong:
		c.touchSync()

	case domain.MsgError:
		logger.Warn("backend error: %s", env.Error)

	default:
		logger.Debug("unknown sync message type %q dropped", env.Type)
	}
}

func (c *Channel) touchSync() {
	c.mu.Lock()
	c.lastSync = c.clock.Now()
	c.mu.Unlock()
}

func changeKind(t domain.MessageType) driving.RemoteChangeKind {
	switch t {
	case domain.MsgDocumentAdded:
		return driving.RemoteAdded
	case domain.MsgDocumentDeleted:
		return driving.RemoteDeleted
	}
	return driving.RemoteUpdated
}
