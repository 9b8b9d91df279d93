package memory

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sharepad/sharepad/internal/application/constant"
	"github.com/sharepad/sharepad/internal/application/metric"
	"github.com/sharepad/sharepad/internal/domain/runtime"
)

// SessionRegistry tracks which sessions belong to which room and
// provides the group-send primitives the broadcast router relies on.
// Room channels are implicit: created on first join, removed when the
// last session leaves. A distributed bus could implement the same
// interface without the router noticing.
type SessionRegistry interface {
	Join(session *runtime.Session)
	// Leave reports whether the session was still registered, so a
	// double disconnect can be treated as a no-op by the caller.
	Leave(session *runtime.Session) bool

	SendToRoom(roomID uuid.UUID, payload any)
	SendToRoomExcept(roomID, senderID uuid.UUID, payload any)

	Contains(session *runtime.Session) bool
	CountInRoom(roomID uuid.UUID) int
}

type sessionRegistry struct {
	// rooms maps room id -> session id -> session.
	rooms map[uuid.UUID]map[uuid.UUID]*runtime.Session

	mu sync.RWMutex
}

func NewSessionRegistry() SessionRegistry {
	return &sessionRegistry{
		rooms: make(map[uuid.UUID]map[uuid.UUID]*runtime.Session),
	}
}

func (r *sessionRegistry) Join(session *runtime.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, ok := r.rooms[session.RoomID]
	if !ok {
		channel = make(map[uuid.UUID]*runtime.Session)
		r.rooms[session.RoomID] = channel
	}

	channel[session.ID] = session

	metric.IncrementActiveSessions()
}

func (r *sessionRegistry) Leave(session *runtime.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	channel, ok := r.rooms[session.RoomID]
	if !ok {
		return false
	}

	if _, ok := channel[session.ID]; !ok {
		return false
	}

	delete(channel, session.ID)
	if len(channel) == 0 {
		delete(r.rooms, session.RoomID)
	}

	metric.DecrementActiveSessions()

	return true
}

func (r *sessionRegistry) SendToRoom(roomID uuid.UUID, payload any) {
	r.sendToRoom(roomID, uuid.Nil, payload)
}

func (r *sessionRegistry) SendToRoomExcept(roomID, senderID uuid.UUID, payload any) {
	r.sendToRoom(roomID, senderID, payload)
}

func (r *sessionRegistry) sendToRoom(roomID, exclude uuid.UUID, payload any) {
	// Snapshot under the read lock, write outside it: a slow
	// connection must not stall joins and leaves.
	r.mu.RLock()
	targets := make([]*runtime.Session, 0, len(r.rooms[roomID]))
	for id, session := range r.rooms[roomID] {
		if id == exclude {
			continue
		}
		targets = append(targets, session)
	}
	r.mu.RUnlock()

	for _, session := range targets {
		if err := session.Send(payload); err != nil {
			slog.Error(
				"write to session",
				slog.Any(constant.Error, err),
				slog.String(constant.RoomID, roomID.String()),
				slog.String(constant.UserName, session.Username),
			)
		}
	}
}

func (r *sessionRegistry) Contains(session *runtime.Session) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[session.RoomID][session.ID]
	return ok
}

func (r *sessionRegistry) CountInRoom(roomID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms[roomID])
}
