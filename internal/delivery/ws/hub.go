package ws

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one registered websocket connection. Writes go through the
// client's own mutex because gorilla connections allow a single concurrent
// writer.
type Client struct {
	ID   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{ID: uuid.NewString(), conn: conn}
}

func (c *Client) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	log.Printf("[hub] init")
	return &Hub{
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ID] = c
	log.Printf("[hub] register client=%s conns=%d", c.ID, len(h.clients))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		log.Printf("[hub] unregister skip: unknown client=%s", c.ID)
		return
	}

	delete(h.clients, c.ID)
	c.conn.Close()
	log.Printf("[hub] unregister client=%s conns=%d", c.ID, len(h.clients))
}

// Broadcast sends msg to every connected client.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		log.Printf("[hub][SEND-SKIP] reason=no_active_connections")
		return
	}

	log.Printf("[hub][SEND] conns=%d bytes=%d", len(h.clients), len(msg))

	for _, c := range h.clients {
		if err := c.write(msg); err != nil {
			log.Printf("[hub][SEND-ERR] client=%s err=%v", c.ID, err)
		}
	}
}

// SendTo sends msg to one client only. A client that already disconnected
// is logged and skipped.
func (h *Hub) SendTo(clientID string, msg []byte) {
	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()

	if !ok {
		log.Printf("[hub][SEND-SKIP] client=%s reason=not_registered", clientID)
		return
	}

	if err := c.write(msg); err != nil {
		log.Printf("[hub][SEND-ERR] client=%s err=%v", clientID, err)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
