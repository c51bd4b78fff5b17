// Package ws serves the streaming chat channel and pushes server notices
// to every connected client.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"travelbot/internal/config"
	"travelbot/internal/domain"
	"travelbot/internal/utils"
)

// ErrHubStopped is returned once Run has exited.
var ErrHubStopped = errors.New("websocket hub stopped")

// Frame is one server-to-client message.
type Frame struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Inbound is one client-to-server message. Plain text frames are treated
// as a chat message.
type Inbound struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Responder answers one chat message. The reply is streamed word by word,
// then data is sent as the final analysis frame.
type Responder func(ctx context.Context, sess domain.Session, text string) (reply string, data any, err error)

// Hub tracks connected clients. Run owns the client set; everything else
// talks to it through channels.
type Hub struct {
	// WordDelay paces streamed reply words.
	WordDelay time.Duration

	upgrader   websocket.Upgrader
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int32
}

// NewHub builds a hub accepting connections from origins. An empty list
// falls back to the local dev servers. Requests without an Origin header
// come from non-browser clients and are accepted.
func NewHub(origins []string) *Hub {
	if len(origins) == 0 {
		origins = config.DefaultCORSOrigins
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			utils.Logger().Debug("ws client connected", zap.String("client_id", c.ID), zap.String("email", c.Session.Email))

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			for c := range h.clients {
				if !c.enqueue(msg) {
					h.drop(c)
				}
			}

		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		}
	}
}

func (h *Hub) drop(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	h.count.Add(-1)
	c.close()
	utils.Logger().Debug("ws client disconnected", zap.String("client_id", c.ID))
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Broadcast sends f to every connected client.
func (h *Hub) Broadcast(f Frame) error {
	msg, err := json.Marshal(f)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Serve upgrades the request and blocks while the client is connected.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sess domain.Session, respond Responder) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &Client{
		ID:      uuid.NewString(),
		Session: sess,
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		quit:    make(chan struct{}),
	}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return ErrHubStopped
	}

	go c.writePump()
	c.readPump(r.Context(), respond)
	return nil
}
