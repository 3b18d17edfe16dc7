package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"heliroute/internal/route"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type frame struct {
	kind int
	data []byte
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan frame
	binary bool
}

// snapshotMessage is what subscribers receive for every published version.
type snapshotMessage struct {
	Event    string           `json:"event" msgpack:"event"`
	Snapshot route.Snapshot   `json:"snapshot" msgpack:"snapshot"`
	Labels   []route.LegLabel `json:"labels" msgpack:"labels"`
}

type Hub struct {
	store      *route.Store
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	// registerTimeout bounds how long a new connection waits for Run.
	registerTimeout time.Duration
}

func NewHub(store *route.Store) *Hub {
	return &Hub{
		store:      store,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),

		registerTimeout: 5 * time.Second,
	}
}

func encodeSnapshot(snap route.Snapshot, binary bool) (frame, error) {
	msg := snapshotMessage{
		Event:    "snapshot",
		Snapshot: snap,
		Labels:   route.FormatLegs(snap.Stats.Legs),
	}
	if binary {
		data, err := msgpack.Marshal(msg)
		return frame{kind: websocket.BinaryMessage, data: data}, err
	}
	data, err := json.Marshal(msg)
	return frame{kind: websocket.TextMessage, data: data}, err
}

func (h *Hub) Run(ctx context.Context) {
	updates := h.store.Subscribe()
	defer h.store.Unsubscribe(updates)
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client connected, total: %d", n)

			if snap, ok := h.store.Current(); ok {
				if f, err := encodeSnapshot(snap, client.binary); err == nil {
					client.send <- f
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			log.Printf("[WS] Client disconnected, total: %d", n)

		case snap, ok := <-updates:
			if !ok {
				return
			}
			h.broadcast(snap)
		}
	}
}

func (h *Hub) broadcast(snap route.Snapshot) {
	var text, bin *frame
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		cached := &text
		if client.binary {
			cached = &bin
		}
		if *cached == nil {
			f, err := encodeSnapshot(snap, client.binary)
			if err != nil {
				log.Printf("[WS] Encode error: %v", err)
				continue
			}
			*cached = &f
		}

		select {
		case client.send <- **cached:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the connection. ?encoding=msgpack switches the
// stream to binary msgpack frames. Run must be running; a connection the hub
// does not accept within registerTimeout is closed.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan frame, 64),
		binary: r.URL.Query().Get("encoding") == "msgpack",
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	case <-time.After(h.registerTimeout):
		log.Printf("[WS] Hub not running, dropping client")
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for f := range c.send {
		if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
			return
		}
	}
}
