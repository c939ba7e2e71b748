package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/1F47E/go-bezier-renderer/internal/metrics"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10
)

// hub fans server events out to every connected calculator page.
type hub struct {
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]*sync.Mutex
	mu       sync.Mutex
	messages chan any
	// hello is sent to every new connection
	hello func() any
}

func newHub(hello func() any) *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		messages: make(chan any, 16),
		hello:    hello,
	}
}

// publish queues a message; it is dropped when the queue is full.
func (h *hub) publish(message any) bool {
	select {
	case h.messages <- message:
		return true
	default:
		log.Warn("websocket queue full, event dropped")
		return false
	}
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("websocket upgrade: %v", err)
		return
	}
	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writeMu := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = writeMu
	h.mu.Unlock()
	metrics.WSClients.Inc()

	if h.hello != nil {
		_ = h.writeJSON(conn, writeMu, h.hello())
	}

	go func() {
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(pingEvery)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := h.writeMessage(conn, writeMu, websocket.PingMessage, nil); err != nil {
						_ = conn.Close()
						return
					}
				}
			}
		}()
		defer close(done)
		defer h.removeClient(conn)
		// the page never sends anything, reading only serves control frames
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *hub) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case message := <-h.messages:
			payload, err := json.Marshal(message)
			if err != nil {
				log.Warnf("websocket event: %v", err)
				continue
			}
			h.broadcast(payload)
		}
	}
}

type client struct {
	conn    *websocket.Conn
	writeMu *sync.Mutex
}

func (h *hub) snapshot() []client {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := make([]client, 0, len(h.clients))
	for conn, writeMu := range h.clients {
		clients = append(clients, client{conn: conn, writeMu: writeMu})
	}
	return clients
}

// broadcast writes payload to every client outside h.mu. Clients that fail
// the write are dropped.
func (h *hub) broadcast(payload []byte) {
	for _, c := range h.snapshot() {
		if err := h.writeMessage(c.conn, c.writeMu, websocket.TextMessage, payload); err != nil {
			h.removeClient(c.conn)
		}
	}
}

func (h *hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		metrics.WSClients.Dec()
	}
	h.mu.Unlock()
	_ = conn.Close()
}

func (h *hub) closeAll() {
	for _, c := range h.snapshot() {
		h.removeClient(c.conn)
	}
}

func (h *hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) writeJSON(conn *websocket.Conn, writeMu *sync.Mutex, payload any) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(payload)
}

func (h *hub) writeMessage(conn *websocket.Conn, writeMu *sync.Mutex, messageType int, payload []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, payload)
}
