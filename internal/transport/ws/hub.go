package ws

import (
	"encoding/json"
	"sync"

	"lurdinha/pkg/logger"
)

// Message is the WebSocket envelope format.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection is one client's live subscription to a room.
type Connection struct {
	RoomCode string
	UID      string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message queued for delivery to a room.
type BroadcastMessage struct {
	RoomCode string
	Message  *Message
}

// Hub manages room subscriptions. A client holds at most one live
// connection per room: registering a new connection for the same
// (room, uid) replaces and closes the previous one, so a re-subscribe never
// causes duplicate delivery.
type Hub struct {
	conns map[string]map[string]*Connection // roomCode -> uid -> conn
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.RoomCode] == nil {
				h.conns[conn.RoomCode] = make(map[string]*Connection)
			}
			if prev, ok := h.conns[conn.RoomCode][conn.UID]; ok {
				close(prev.Send)
			}
			h.conns[conn.RoomCode][conn.UID] = conn
			h.mu.Unlock()
			logger.Debug("client subscribed", "room", conn.RoomCode, "uid", conn.UID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.conns[conn.RoomCode]; ok {
				if existing, ok := room[conn.UID]; ok && existing == conn {
					delete(room, conn.UID)
					close(conn.Send)
					if len(room) == 0 {
						delete(h.conns, conn.RoomCode)
					}
				}
			}
			h.mu.Unlock()
			logger.Debug("client unsubscribed", "room", conn.RoomCode, "uid", conn.UID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, err := json.Marshal(msg.Message)
			if err == nil {
				for _, conn := range h.conns[msg.RoomCode] {
					select {
					case conn.Send <- data:
					default:
						// Drop message if the client's buffer is full.
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection, replacing any previous one for the same client.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection. Leaving is purely a subscription change;
// the stored player list is untouched.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToRoom sends a message to every subscriber of a room
// (implements service.Broadcaster).
func (h *Hub) BroadcastToRoom(roomCode string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal broadcast payload", "room", roomCode, "type", msgType, "error", err)
		return
	}
	h.broadcast <- &BroadcastMessage{
		RoomCode: roomCode,
		Message:  &Message{Type: msgType, Payload: data},
	}
}

// DisconnectRoom closes every subscription to a room
// (implements service.Broadcaster).
func (h *Hub) DisconnectRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conn := range h.conns[roomCode] {
		close(conn.Send)
	}
	delete(h.conns, roomCode)
}
