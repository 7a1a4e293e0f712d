package service

// Broadcaster pushes room events to subscribed clients (avoids an import
// cycle with the ws transport).
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgType string, payload interface{})
	DisconnectRoom(roomCode string)
}
