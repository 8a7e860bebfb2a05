package websockets

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pizza-nz/hotel-service/internal/models"
)

// Hub fans order events out to every connected staff display.
type Hub struct {
	clients map[*Client]bool

	register chan *Client

	unregister chan *Client

	broadcast chan []byte

	done chan struct{}

	log *slog.Logger

	mu sync.Mutex
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
		log:        log,
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// OrderPlaced implements service.OrderPublisher.
func (h *Hub) OrderPlaced(order models.Order) {
	h.publish(TypeOrderPlaced, order)
}

// OrderUpdated implements service.OrderPublisher.
func (h *Hub) OrderUpdated(order models.Order) {
	h.publish(TypeOrderUpdated, order)
}

func (h *Hub) publish(messageType MessageType, payload interface{}) {
	message, err := encode(messageType, payload)
	if err != nil {
		h.log.Error("failed to encode feed message", "type", messageType, "error", err)
		return
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Info("feed client connected", "username", client.username, "role", client.role)
		case client := <-h.unregister:
			h.remove(client)
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.log.Info("feed client disconnected", "username", client.username)
	}
}

func encode(messageType MessageType, payload interface{}) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(Message{Type: messageType, Data: data})
}
