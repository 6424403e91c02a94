package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vovarama1992/mediarelay/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()

	hub := NewHub()
	relay := domain.NewRelayService()

	go func() {
		for msg := range relay.Broadcasts() {
			payload, err := EncodeNewMessage(msg)
			if err != nil {
				continue
			}
			hub.Broadcast(payload)
		}
	}()
	go func() {
		for req := range relay.UploadRequests() {
			hub.SendTo(req.ClientID, EncodeUploadRequest(req.Key))
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", WSHandler(hub, relay, nil))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hub
}

// waitForClients blocks until the hub has registered n connections.
// Registration happens on the server side just after the upgrade, so a
// successful dial does not guarantee it already ran.
func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d clients (have %d)", n, hub.Count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) serverEvent {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev serverEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	return ev
}

func sendEvent(t *testing.T, conn *websocket.Conn, ev clientEvent) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(ev))
}

func TestPlainMessageBroadcastsToAllClients(t *testing.T) {
	srv, hub := newTestServer(t)

	alice := dial(t, srv)
	bob := dial(t, srv)
	waitForClients(t, hub, 2)

	sendEvent(t, alice, clientEvent{
		Type:    "sendMessage",
		Message: &wireMessage{Sender: "alice", Text: "hello"},
	})

	for _, conn := range []*websocket.Conn{alice, bob} {
		ev := readEvent(t, conn)
		assert.Equal(t, "newMessage", ev.Type)
		require.NotNil(t, ev.Message)
		assert.Equal(t, "alice", ev.Message.Sender)
		assert.Equal(t, "hello", ev.Message.Text)
		assert.NotEmpty(t, ev.Message.ID)
	}
}

func TestDeferredMediaResolutionEndToEnd(t *testing.T) {
	srv, hub := newTestServer(t)

	alice := dial(t, srv)
	bob := dial(t, srv)
	waitForClients(t, hub, 2)

	sendEvent(t, alice, clientEvent{
		Type:    "sendMessage",
		Message: &wireMessage{ID: "1", Sender: "alice", Text: "see blob:abc"},
	})

	// only the originating client is asked to upload
	req := readEvent(t, alice)
	assert.Equal(t, "requestBlobUpload", req.Type)
	assert.Equal(t, "blob:abc", req.Key)

	sendEvent(t, alice, clientEvent{
		Type: "blobUploadComplete",
		Key:  "blob:abc",
		URL:  "https://host/files/xyz.png",
	})

	for _, conn := range []*websocket.Conn{alice, bob} {
		ev := readEvent(t, conn)
		assert.Equal(t, "newMessage", ev.Type)
		require.NotNil(t, ev.Message)
		assert.Equal(t, "1", ev.Message.ID)
		assert.Equal(t, "see https://host/files/xyz.png", ev.Message.Text)
	}
}

func TestDirectMediaFastPath(t *testing.T) {
	srv, hub := newTestServer(t)

	alice := dial(t, srv)
	waitForClients(t, hub, 1)

	sendEvent(t, alice, clientEvent{
		Type: "sendMessage",
		Message: &wireMessage{
			Sender:   "alice",
			MediaURL: "https://host/files/ready.png",
			Caption:  "already uploaded",
		},
	})

	ev := readEvent(t, alice)
	assert.Equal(t, "newMessage", ev.Type)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "https://host/files/ready.png", ev.Message.MediaURL)
	assert.Equal(t, "already uploaded", ev.Message.Caption)
}

func TestInvalidFramesGetErrorAndMutateNothing(t *testing.T) {
	srv, _ := newTestServer(t)

	alice := dial(t, srv)

	if err := alice.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	ev := readEvent(t, alice)
	assert.Equal(t, "error", ev.Type)

	sendEvent(t, alice, clientEvent{Type: "sendMessage"})
	ev = readEvent(t, alice)
	assert.Equal(t, "error", ev.Type)

	sendEvent(t, alice, clientEvent{Type: "blobUploadComplete", Key: "blob:x"})
	ev = readEvent(t, alice)
	assert.Equal(t, "error", ev.Type)

	sendEvent(t, alice, clientEvent{Type: "mystery"})
	ev = readEvent(t, alice)
	assert.Equal(t, "error", ev.Type)
}

func TestHubSendToUnknownClientIsSafe(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.SendTo("nobody", []byte("x")) })
	assert.Equal(t, 0, hub.Count())
}
