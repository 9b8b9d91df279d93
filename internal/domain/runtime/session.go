package runtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const pingWriteWait = 10 * time.Second

// Conn is the minimal websocket surface a session writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v any) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Session is one live realtime connection, scoped to exactly one room
// for its lifetime. It holds the room id only, never a reference into
// the room store.
type Session struct {
	ID          uuid.UUID
	RoomID      uuid.UUID
	UserID      uuid.UUID
	Username    string
	ConnectedAt time.Time

	// mu serializes writes: gorilla connections allow one concurrent
	// writer only.
	mu   sync.Mutex
	conn Conn
}

func NewSession(roomID, userID uuid.UUID, username string, conn Conn) *Session {
	return &Session{
		ID:          uuid.New(),
		RoomID:      roomID,
		UserID:      userID,
		Username:    username,
		ConnectedAt: time.Now(),
		conn:        conn,
	}
}

func (s *Session) Send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.WriteJSON(v)
}

// Ping sends a keepalive control frame. It takes the same lock as
// Send so the connection never sees two concurrent writers.
func (s *Session) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingWriteWait))
}

func (s *Session) Close() error {
	return s.conn.Close()
}
