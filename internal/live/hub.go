package live

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/trian/landing/backend/wishes-service/internal/wish"
	"github.com/trian/landing/backend/wishes-service/pkg/logger"
	"github.com/trian/landing/backend/wishes-service/pkg/metrics"
)

const (
	EventCreated = "created"
	EventDeleted = "deleted"
)

// Event is the frame pushed to every subscriber.
type Event struct {
	Type string     `json:"type"`
	Wish *wish.Wish `json:"wish,omitempty"`
	ID   int        `json:"id,omitempty"`
}

// Hub fans wish events out to all connected websocket clients.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is canceled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.count.Add(1)
			metrics.LiveClients.Inc()
			logger.Debugf("live client registered: %s (total: %d)", client.id, len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				logger.Debugf("live client unregistered: %s (total: %d)", client.id, len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer
					h.drop(client)
				}
			}
		}
	}
}

// subscribe reports false once the hub has stopped.
func (h *Hub) subscribe(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unsubscribe(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
	metrics.LiveClients.Dec()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// WishCreated announces a newly stored wish.
func (h *Hub) WishCreated(w wish.Wish) {
	h.publish(Event{Type: EventCreated, Wish: &w})
}

// WishDeleted announces a removed wish id.
func (h *Hub) WishDeleted(id int) {
	h.publish(Event{Type: EventDeleted, ID: id})
}

// publish never blocks the request path; events are dropped when the hub is backed up.
func (h *Hub) publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("live: encode %s event: %v", ev.Type, err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logger.Warnf("live: broadcast queue full, dropping %s event", ev.Type)
	}
}
