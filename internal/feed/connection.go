package feed

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Connection wraps the WebSocket connection with an outgoing queue
type Connection struct {
	ws   *websocket.Conn
	send chan []byte
}

// NewConnection creates a new connection wrapper
func NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ws:   ws,
		send: make(chan []byte, 256), // Buffered channel for outgoing messages
	}
}

// MessageHandler handles messages read from a connection
type MessageHandler interface {
	HandleMessage(conn *Connection, message []byte)
}

// ReadPump reads messages from the WebSocket connection until it fails
func (c *Connection) ReadPump(h MessageHandler) {
	defer c.ws.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading feed message: %v", err)
			}
			return
		}

		h.HandleMessage(c, message)
	}
}

// WritePump writes queued messages until the queue is closed
func (c *Connection) WritePump() {
	defer c.ws.Close()

	for message := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		w, err := c.ws.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		if _, err := w.Write(message); err != nil {
			return
		}
		if err := w.Close(); err != nil {
			return
		}
	}

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// SendMessage queues msg for the client. A client that cannot keep up is
// disconnected rather than allowed to stall the sender.
func (c *Connection) SendMessage(msg interface{}) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.Send(messageBytes)
	return nil
}

// Send queues an encoded message. The bytes are shared, not copied.
func (c *Connection) Send(message []byte) {
	select {
	case c.send <- message:
	default:
		c.ws.Close()
	}
}

// Close closes the underlying socket, which ends ReadPump.
func (c *Connection) Close() error {
	return c.ws.Close()
}
