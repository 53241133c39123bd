// Package feed streams render parameters to remote renderers over WebSocket
// and accepts their key events as an input source.
package feed

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/bookistos/warehouse-simulator/internal/input"
	"github.com/bookistos/warehouse-simulator/internal/simulation"
	"github.com/bookistos/warehouse-simulator/internal/view"
	"github.com/bookistos/warehouse-simulator/internal/world/warehouse"
)

var upgrader = websocket.Upgrader{
	// Remote renderers are served from anywhere on the local network.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub manages feed clients. It is an http.Handler for the WebSocket
// endpoint and an input.Source for the keys clients hold.
type Hub struct {
	input.Dispatcher

	scene     BaseMessage
	eyeHeight float64
	minimap   view.Minimap

	mu      sync.RWMutex
	clients map[*Connection]map[input.Key]bool
	held    map[input.Key]int
	closed  bool
}

// NewHub creates a hub for m. Frames use eyeHeight for the camera and
// pixelsPerTile for the minimap marker.
func NewHub(m *warehouse.Map, eyeHeight, pixelsPerTile float64) *Hub {
	return &Hub{
		scene:     BaseMessage{Type: MessageTypeScene, Payload: newSceneMessage(m)},
		eyeHeight: eyeHeight,
		minimap:   view.NewMinimap(m, pixelsPerTile),
		clients:   make(map[*Connection]map[input.Key]bool),
		held:      make(map[input.Key]int),
	}
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "feed closed", http.StatusServiceUnavailable)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade feed connection: %v", err)
		return
	}

	conn := NewConnection(ws)
	if err := conn.SendMessage(h.scene); err != nil {
		log.Printf("Failed to encode scene: %v", err)
		ws.Close()
		return
	}
	if !h.addClient(conn) {
		ws.Close()
		return
	}
	log.Printf("Feed client connected from %s (%d connected)", ws.RemoteAddr(), h.Clients())

	go conn.WritePump()
	conn.ReadPump(h)

	h.removeClient(conn)
	log.Printf("Feed client %s disconnected (%d connected)", ws.RemoteAddr(), h.Clients())
}

// Close disconnects every client and refuses new ones. http.Server.Shutdown
// does not touch hijacked connections, so call Close alongside it.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*Connection, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends the frame for res to every client. The frame is encoded
// once and the same bytes are queued for each client.
func (h *Hub) Publish(res simulation.TickResult) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	frame, err := json.Marshal(BaseMessage{Type: MessageTypeFrame, Payload: newFrameMessage(res, h.eyeHeight, h.minimap)})
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return
	}
	for conn := range h.clients {
		conn.Send(frame)
	}
}

// HandleMessage implements MessageHandler.
func (h *Hub) HandleMessage(conn *Connection, message []byte) {
	var msg KeyMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Error unmarshaling feed message: %v", err)
		h.sendError(conn, "BAD_MESSAGE", "message is not valid JSON")
		return
	}

	switch msg.Type {
	case MessageTypeKeyDown, MessageTypeKeyUp:
		key := input.Key(msg.Code)
		if !input.IsKnown(key) {
			h.sendError(conn, "UNKNOWN_KEY", "unknown key code: "+msg.Code)
			return
		}
		if msg.Type == MessageTypeKeyDown {
			h.press(conn, key)
		} else {
			h.release(conn, key)
		}
	default:
		log.Printf("Unknown feed message type: %s", msg.Type)
		h.sendError(conn, "UNKNOWN_MESSAGE_TYPE", "Unknown message type received")
	}
}

func (h *Hub) sendError(conn *Connection, code, message string) {
	conn.SendMessage(BaseMessage{
		Type:    MessageTypeError,
		Payload: ErrorMessage{Code: code, Message: message},
	})
}

// addClient registers conn unless the hub has been closed.
func (h *Hub) addClient(conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[conn] = make(map[input.Key]bool)
	return true
}

// removeClient drops conn and releases the keys only it was holding.
func (h *Hub) removeClient(conn *Connection) {
	h.mu.Lock()
	keys := h.clients[conn]
	delete(h.clients, conn)
	close(conn.send)

	var released []input.Key
	for k := range keys {
		if h.held[k]--; h.held[k] == 0 {
			delete(h.held, k)
			released = append(released, k)
		}
	}
	h.mu.Unlock()

	for _, k := range released {
		h.KeyUp(k)
	}
}

// press and release keep a count per key across clients, so a key is
// reported held while any client holds it.
func (h *Hub) press(conn *Connection, k input.Key) {
	h.mu.Lock()
	keys, ok := h.clients[conn]
	if !ok || keys[k] {
		h.mu.Unlock()
		return
	}
	keys[k] = true
	h.held[k]++
	first := h.held[k] == 1
	h.mu.Unlock()

	if first {
		h.KeyDown(k)
	}
}

func (h *Hub) release(conn *Connection, k input.Key) {
	h.mu.Lock()
	keys, ok := h.clients[conn]
	if !ok || !keys[k] {
		h.mu.Unlock()
		return
	}
	delete(keys, k)
	h.held[k]--
	last := h.held[k] == 0
	if last {
		delete(h.held, k)
	}
	h.mu.Unlock()

	if last {
		h.KeyUp(k)
	}
}
