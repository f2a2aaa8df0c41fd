package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"campusmarket/internal/domain/entity"
	"campusmarket/pkg/logger"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8 * 1024

	// Holds a full history replay plus live traffic.
	sendBufferSize = 256
)

// Client is one live connection bound to the identity resolved at connect time.
type Client struct {
	ID        string
	Identity  entity.Identity
	ProductID string
	Conn      *websocket.Conn
	Send      chan []byte
}

func NewClient(conn *websocket.Conn, identity entity.Identity, productID string) *Client {
	return &Client{
		ID:        uuid.New().String(),
		Identity:  identity,
		ProductID: productID,
		Conn:      conn,
		Send:      make(chan []byte, sendBufferSize),
	}
}

func (c *Client) UserID() string {
	return c.Identity.UserID
}

// ReadPump blocks reading frames and hands each to onMessage. It returns when
// the connection fails or the peer closes it.
func (c *Client) ReadPump(onMessage func(raw []byte)) {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error for client %s: %v", c.ID, err)
			}
			return
		}
		onMessage(message)
	}
}

// WritePump drains Send until the manager closes it. A failed write closes
// the connection, which ends ReadPump and unregisters the client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Error("WebSocket write error for client %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ClosePolicy rejects a connection whose identity could not be resolved.
func ClosePolicy(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	conn.Close()
}
