package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConn(h *Hub, room, uid string) *Connection {
	return &Connection{RoomCode: room, UID: uid, Send: make(chan []byte, 8), Hub: h}
}

func recv(t *testing.T, c *Connection) ([]byte, bool) {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		return data, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil, false
	}
}

func TestHub_BroadcastReachesAllRoomSubscribers(t *testing.T) {
	h := NewHub()
	a := newConn(h, "12345", "u1")
	b := newConn(h, "12345", "u2")
	other := newConn(h, "99999", "u3")
	h.Register(a)
	h.Register(b)
	h.Register(other)

	h.BroadcastToRoom("12345", "room_snapshot", map[string]string{"code": "12345"})

	for _, c := range []*Connection{a, b} {
		data, ok := recv(t, c)
		require.True(t, ok)

		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "room_snapshot", msg.Type)
		assert.JSONEq(t, `{"code":"12345"}`, string(msg.Payload))
	}

	select {
	case data := <-other.Send:
		t.Fatalf("subscriber of another room received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_ReRegisterReplacesPreviousConnection(t *testing.T) {
	h := NewHub()
	first := newConn(h, "12345", "u1")
	second := newConn(h, "12345", "u1")
	h.Register(first)
	h.Register(second)

	// The replaced connection is closed, so a re-subscribe never causes
	// duplicate delivery.
	_, ok := recv(t, first)
	assert.False(t, ok)

	h.BroadcastToRoom("12345", "room_snapshot", map[string]string{"code": "12345"})
	data, ok := recv(t, second)
	require.True(t, ok)
	assert.Contains(t, string(data), "room_snapshot")
}

func TestHub_UnregisterOfReplacedConnectionKeepsCurrent(t *testing.T) {
	h := NewHub()
	first := newConn(h, "12345", "u1")
	second := newConn(h, "12345", "u1")
	h.Register(first)
	h.Register(second)

	// The old socket's read pump unregisters after being replaced; that must
	// not tear down the live connection.
	h.Unregister(first)

	h.BroadcastToRoom("12345", "room_snapshot", map[string]string{"code": "12345"})
	_, ok := recv(t, second)
	assert.True(t, ok)
}

func TestHub_DisconnectRoomClosesEverySubscriber(t *testing.T) {
	h := NewHub()
	a := newConn(h, "12345", "u1")
	b := newConn(h, "12345", "u2")
	h.Register(a)
	h.Register(b)

	h.DisconnectRoom("12345")

	_, ok := recv(t, a)
	assert.False(t, ok)
	_, ok = recv(t, b)
	assert.False(t, ok)
}
