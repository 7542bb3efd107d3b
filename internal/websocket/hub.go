package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/event"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/metrics"
)

// Hub forwards bus events to connected dashboard clients. Events aimed at one
// session only reach that session's clients.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	bus        event.Bus
	log        *slog.Logger
	metrics    *metrics.Metrics
	count      chan chan int
	done       chan struct{}
}

func NewHub(bus event.Bus, log *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		bus:        bus,
		log:        log.With("component", "ws_hub"),
		metrics:    m,
		count:      make(chan chan int),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx ends, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.metrics.WebsocketConnected()
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		case e, ok := <-events:
			if !ok {
				return
			}
			h.broadcast(e)
		}
	}
}

func (h *Hub) broadcast(e event.Event) {
	message, err := json.Marshal(e)
	if err != nil {
		h.log.Error("failed to marshal event", "error", err)
		return
	}

	for client := range h.clients {
		if e.SessionID != "" && client.sessionID != e.SessionID {
			continue
		}
		if e.Origin != "" && client.sessionID == e.Origin {
			continue
		}

		select {
		case client.send <- message:
		default:
			h.log.Warn("dropping slow websocket client", "session_id", client.sessionID)
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.metrics.WebsocketDisconnected()
}

// Clients reports the number of connected clients; zero once Run has returned.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
