// hub.go - Per-user WebSocket delivery of domain events

package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"go-jobmarket-backend/events"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true }, // CORS is enforced by the router
}

// Client is one authenticated WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uint
	send   chan []byte
}

type delivery struct {
	recipients []uint
	payload    []byte
}

// Hub routes events to the connections of the users they are addressed to.
// Clients join under the mutex in Serve; everything else runs in Run.
type Hub struct {
	clients    map[*Client]struct{}
	closed     bool // set once Run has shut the hub down
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *log.Logger
}

// NewHub returns a hub that does nothing until Run is started.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		unregister: make(chan *Client, 64),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes departures and deliveries until ctx is cancelled, then
// closes every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			h.closed = true
			close(h.done)
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mutex.Unlock()
			return

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Printf("WS disconnected | user=%d total_clients=%d", c.userID, total)

		case d := <-h.deliver:
			h.mutex.Lock()
			for c := range h.clients {
				if !addressedTo(d.recipients, c.userID) {
					continue
				}
				select {
				case c.send <- d.payload:
				default:
					// slow consumer: drop it rather than stall every other client
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Notify implements events.Notifier. It never blocks: a full queue drops the event.
func (h *Hub) Notify(_ context.Context, e events.Event) {
	b, err := json.Marshal(e)
	if err != nil {
		h.logger.Printf("WS marshal error | type=%s err=%v", e.Type, err)
		return
	}
	select {
	case h.deliver <- delivery{recipients: e.Recipients, payload: b}:
	default:
		h.logger.Printf("WS event dropped | type=%s reason=buffer_full", e.Type)
	}
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and attaches the connection to userID. After the
// hub has shut down the connection is closed right away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{hub: h, conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	if h.closed {
		h.mutex.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return nil
	}
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mutex.Unlock()
	h.logger.Printf("WS connected | user=%d total_clients=%d", c.userID, total)

	go c.writePump()
	go c.readPump()
	return nil
}

func addressedTo(recipients []uint, userID uint) bool {
	if len(recipients) == 0 {
		return true
	}
	for _, id := range recipients {
		if id == userID {
			return true
		}
	}
	return false
}

// readPump discards inbound messages and keeps the read deadline fresh.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
