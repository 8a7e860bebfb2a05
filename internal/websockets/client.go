package websockets

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pizza-nz/hotel-service/internal/models"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 64 * 1024

	updateTimeout = 5 * time.Second
)

type MessageType string

const (
	TypeOrderPlaced  MessageType = "order.placed"
	TypeOrderUpdated MessageType = "order.updated"
	TypeOrderStatus  MessageType = "order.status"
	TypeError        MessageType = "error"
	TypePing         MessageType = "ping"
	TypePong         MessageType = "pong"
)

type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// StatusChange is the payload of an order.status message.
type StatusChange struct {
	OrderID uuid.UUID          `json:"order_id"`
	Status  models.OrderStatus `json:"status"`
}

// StatusUpdater applies order.status messages sent by staff.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	updater StatusUpdater
	log     *slog.Logger

	username string
	role     models.Role
}

func NewClient(hub *Hub, conn *websocket.Conn, updater StatusUpdater, username string, role models.Role) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		updater:  updater,
		log:      hub.log.With("username", username),
		username: username,
		role:     role,
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("feed read failed", "error", err)
			}
			break
		}

		var wsMessage Message
		if err := json.Unmarshal(message, &wsMessage); err != nil {
			c.reply(TypeError, "malformed message")
			continue
		}

		switch wsMessage.Type {
		case TypeOrderStatus:
			var change StatusChange
			if err := json.Unmarshal(wsMessage.Data, &change); err != nil {
				c.reply(TypeError, "malformed order.status payload")
				continue
			}
			c.updateStatus(change)

		case TypePing:
			c.reply(TypePong, nil)

		default:
			c.reply(TypeError, "unsupported message type "+string(wsMessage.Type))
		}
	}
}

// updateStatus applies the change; the resulting order.updated broadcast
// reaches this client through the hub.
func (c *Client) updateStatus(change StatusChange) {
	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()

	if _, err := c.updater.UpdateStatus(ctx, change.OrderID, change.Status); err != nil {
		c.log.Warn("order status update rejected", "order_id", change.OrderID, "status", change.Status, "error", err)
		c.reply(TypeError, err.Error())
		return
	}

	c.log.Info("order status changed from feed", "order_id", change.OrderID, "status", change.Status)
}

// reply queues a message for this client only. It is dropped if the client
// is not keeping up.
func (c *Client) reply(messageType MessageType, payload interface{}) {
	message, err := encode(messageType, payload)
	if err != nil {
		c.log.Error("failed to encode reply", "error", err)
		return
	}

	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- message:
	default:
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs registers an authenticated staff connection with the hub and
// starts its pumps.
func ServeWs(hub *Hub, conn *websocket.Conn, updater StatusUpdater, username string, role models.Role) {
	client := NewClient(hub, conn, updater, username, role)

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
