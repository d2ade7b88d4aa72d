package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docbridge/internal/adapters/driven/clock"
	"github.com/custodia-labs/docbridge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docbridge/internal/core/domain"
	"github.com/custodia-labs/docbridge/internal/core/ports/driving"
)

var upgrader = websocket.Upgrader{}

// recordingHandler captures routed events on channels so tests can wait
// for asynchronous delivery.
type recordingHandler struct {
	lists       chan []domain.Document
	events      chan string
	confirmed   chan string
	failed      chan string
	established chan string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		lists:       make(chan []domain.Document, 8),
		events:      make(chan string, 8),
		confirmed:   make(chan string, 8),
		failed:      make(chan string, 8),
		established: make(chan string, 8),
	}
}

func (h *recordingHandler) HandleDocumentsList(docs []domain.Document) { h.lists <- docs }
func (h *recordingHandler) HandleDocumentEvent(kind driving.RemoteChangeKind, doc domain.Document, _ time.Time) {
	h.events <- string(kind) + ":" + doc.ID
}
func (h *recordingHandler) HandleOperationConfirmed(id string, _ domain.Patch) { h.confirmed <- id }
func (h *recordingHandler) HandleOperationFailed(id string)                    { h.failed <- id }
func (h *recordingHandler) HandleConnectionEstablished(msg string)             { h.established <- msg }

// testServer is a minimal backend: it records inbound messages and lets
// the test push outbound ones.
type testServer struct {
	srv *httptest.Server

	mu       sync.Mutex
	conns    []*websocket.Conn
	inbound  chan map[string]any
	authSeen chan string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		inbound:  make(chan map[string]any, 32),
		authSeen: make(chan string, 4),
	}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case ts.authSeen <- r.Header.Get("Authorization"):
		default:
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.mu.Lock()
		ts.conns = append(ts.conns, conn)
		ts.mu.Unlock()
		for {
			var msg map[string]any
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			ts.inbound <- msg
		}
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) url() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http")
}

func (ts *testServer) push(t *testing.T, v any) {
	t.Helper()
	ts.mu.Lock()
	defer ts.mu.Unlock()
	require.NotEmpty(t, ts.conns, "no client connected")
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, ts.conns[len(ts.conns)-1].WriteMessage(websocket.TextMessage, payload))
}

func (ts *testServer) pushRaw(t *testing.T, payload string) {
	t.Helper()
	ts.mu.Lock()
	defer ts.mu.Unlock()
	require.NotEmpty(t, ts.conns)
	require.NoError(t, ts.conns[len(ts.conns)-1].WriteMessage(websocket.TextMessage, []byte(payload)))
}

func (ts *testServer) dropClients() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, conn := range ts.conns {
		conn.Close()
	}
	ts.conns = nil
}

func awaitType(t *testing.T, ts *testServer, want string) map[string]any {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case msg := <-ts.inbound:
			if msg["type"] == want {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func testSettings(url string) domain.SyncSettings {
	s := domain.DefaultSyncSettings()
	s.ServerURL = url
	s.HeartbeatInterval = 30 * time.Second
	s.ReconnectBaseDelay = time.Second
	s.MaxReconnectAttempts = 3
	return s
}

func newTestChannel(t *testing.T, url string) (*Channel, *recordingHandler, *memory.Cache, *clock.Fake) {
	t.Helper()
	handler := newRecordingHandler()
	cache := memory.NewCache()
	fake := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	ch := NewChannel(testSettings(url), handler, cache, fake)
	return ch, handler, cache, fake
}

func TestChannel_ConnectRequestsDocuments(t *testing.T) {
	ts := newTestServer(t)
	ch, _, cache, _ := newTestChannel(t, ts.url())
	defer ch.Disconnect()

	require.NoError(t, ch.Connect(context.Background()))
	awaitType(t, ts, "request_documents")

	assert.Equal(t, domain.StateConnected, ch.Info().State)
	assert.True(t, cache.Connected())
}

func TestChannel_AuthHeaderOnDial(t *testing.T) {
	ts := newTestServer(t)
	handler := newRecordingHandler()
	cache := memory.NewCache()
	settings := testSettings(ts.url())
	settings.AuthToken = "tok-123"
	ch := NewChannel(settings, handler, cache, clock.NewFake(time.Now()))
	defer ch.Disconnect()

	require.NoError(t, ch.Connect(context.Background()))
	assert.Equal(t, "Bearer tok-123", <-ts.authSeen)
}

func TestChannel_RoutesDocumentsList(t *testing.T) {
	ts := newTestServer(t)
	ch, handler, _, _ := newTestChannel(t, ts.url())
	defer ch.Disconnect()
	require.NoError(t, ch.Connect(context.Background()))
	awaitType(t, ts, "request_documents")

	ts.push(t, map[string]any{
		"type": "documents_list",
		"data": []map[string]any{{"id": "doc-1", "filename": "a.pdf"}},
	})

	select {
	case docs := <-handler.lists:
		require.Len(t, docs, 1)
		assert.Equal(t, "doc-1", docs[0].ID)
	case <-time.After(3 * time.Second):
		t.Fatal("documents_list not routed")
	}
}

func TestChannel_RoutesDocumentEvents(t *testing.T) {
	ts := newTestServer(t)
	ch, handler, _, _ := newTestChannel(t, ts.url())
	defer ch.Disconnect()
	require.NoError(t, ch.Connect(context.Background()))
	awaitType(t, ts, "request_documents")

	ts.push(t, map[string]any{"type": "document_added", "data": map[string]any{"id": "doc-1"}})
	ts.push(t, map[string]any{"type": "document_updated", "data": map[string]any{"id": "doc-1"}})
	ts.push(t, map[string]any{"type": "document_deleted", "data": map[string]any{"id": "doc-1"}})

	assert.Equal(t, "added:doc-1", <-handler.events)
	assert.Equal(t, "updated:doc-1", <-handler.events)
	assert.Equal(t, "deleted:doc-1", <-handler.events)
}

func TestChannel_RoutesOperationOutcomes(t *testing.T) {
	ts := newTestServer(t)
	ch, handler, _, _ := newTestChannel(t, ts.url())
	defer ch.Disconnect()
	require.NoError(t, ch.Connect(context.Background()))
	awaitType(t, ts, "request_documents")

	ts.push(t, map[string]any{"type": "operation_confirmed", "operation_id": "op-1", "data": map[string]any{"id": "doc-9"}})
	ts.push(t, map[string]any{"type": "operation_failed", "operation_id": "op-2", "error": "validation"})
	ts.push(t, map[string]any{"type": "connection_established", "message": "welcome"})

	assert.Equal(t, "op-1", <-handler.confirmed)
	assert.Equal(t, "op-2", <-handler.failed)
	assert.Equal(t, "welcome", <-handler.established)
}

func TestChannel_MalformedMessagesDropped(t *testing.T) {
	ts := newTestServer(t)
	ch, handler, _, _ := newTestChannel(t, ts.url())
	defer ch.Disconnect()
	require.NoError(t, ch.Connect(context.Background()))
	awaitType(t, ts, "request_documents")

	ts.pushRaw(t, "{not json")
	ts.pushRaw(t, `{"type":"documents_list","data":"not an array"}`)
	ts.push(t, map[string]any{"type": "document_added", "data": map[string]any{"id": "doc-1"}})

	// The valid message after the garbage still arrives: the connection
	// survived the malformed ones.
	assert.Equal(t, "added:doc-1", <-handler.events)
	assert.Empty(t, handler.lists)
	assert.Equal(t, domain.StateConnected, ch.Info().State)
}

func TestChannel_SendOperation(t *testing.T) {
	ts := newTestServer(t)
	ch, _, _, _ := newTestChannel(t, ts.url())
	defer ch.Disconnect()
	require.NoError(t, ch.Connect(context.Background()))
	awaitType(t, ts, "request_documents")

	op := domain.Operation{
		ID:         "op-1",
		Kind:       domain.OperationUpdate,
		Entity:     domain.EntityDocument,
		DocumentID: "doc-1",
		Patch:      domain.Patch{"filename": "renamed.pdf"},
	}
	require.NoError(t, ch.SendOperation(op))

	msg := awaitType(t, ts, "optimistic_operation")
	assert.Equal(t, "op-1", msg["operation_id"])
	assert.Equal(t, "update", msg["operation_type"])
	data, ok := msg["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "doc-1", data["id"])
	assert.Equal(t, "renamed.pdf", data["filename"])
}

func TestChannel_SendOperation_NotConnected(t *testing.T) {
	ts := newTestServer(t)
	ch, _, _, _ := newTestChannel(t, ts.url())

	err := ch.SendOperation(domain.Operation{ID: "op-1"})
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestChannel_Heartbeat(t *testing.T) {
	ts := newTestServer(t)
	ch, _, _, fake := newTestChannel(t, ts.url())
	defer ch.Disconnect()
	require.NoError(t, ch.Connect(context.Background()))
	awaitType(t, ts, "request_documents")

	fake.Advance(30 * time.Second)
	awaitType(t, ts, "ping")
	fake.Advance(30 * time.Second)
	awaitType(t, ts, "ping")
}

func TestChannel_ReconnectAfterDrop(t *testing.T) {
	ts := newTestServer(t)
	ch, _, cache, fake := newTestChannel(t, ts.url())
	defer ch.Disconnect()
	require.NoError(t, ch.Connect(context.Background()))
	awaitType(t, ts, "request_documents")

	ts.dropClients()

	// Wait until the read loop notices and flips connectivity.
	require.Eventually(t, func() bool { return !cache.Connected() }, 3*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return ch.Info().ReconnectAttempts == 1 }, 3*time.Second, 10*time.Millisecond)

	fake.Advance(time.Second)
	awaitType(t, ts, "request_documents")
	require.Eventually(t, func() bool { return ch.Info().State == domain.StateConnected }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, ch.Info().ReconnectAttempts)
}

func TestChannel_ReconnectBudgetExhausted(t *testing.T) {
	handler := newRecordingHandler()
	cache := memory.NewCache()
	fake := clock.NewFake(time.Now())
	settings := testSettings("ws://127.0.0.1:1/ws") // nothing listens here
	settings.MaxReconnectAttempts = 2
	ch := NewChannel(settings, handler, cache, fake)

	err := ch.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, ch.Info().ReconnectAttempts)

	// First retry fires after the base delay and fails again.
	fake.Advance(time.Second)
	require.Eventually(t, func() bool { return ch.Info().ReconnectAttempts == 2 }, 3*time.Second, 10*time.Millisecond)

	// Second retry fires after twice the base delay, fails, and the
	// budget is spent.
	fake.Advance(2 * time.Second)
	require.Eventually(t, func() bool { return ch.Info().State == domain.StateError }, 3*time.Second, 10*time.Millisecond)
}

func TestChannel_ManualDisconnectSuppressesReconnect(t *testing.T) {
	ts := newTestServer(t)
	ch, _, cache, fake := newTestChannel(t, ts.url())
	require.NoError(t, ch.Connect(context.Background()))
	awaitType(t, ts, "request_documents")

	ch.Disconnect()
	assert.Equal(t, domain.StateDisconnected, ch.Info().State)
	assert.False(t, cache.Connected())

	// No retry timer should be armed; advancing time must not redial.
	fake.Advance(time.Minute)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, domain.StateDisconnected, ch.Info().State)
}
