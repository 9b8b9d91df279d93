package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sharepad/sharepad/internal/application/constant"
	"github.com/sharepad/sharepad/internal/application/metric"
	"github.com/sharepad/sharepad/internal/infra/adapters/postgres/repository"
)

const saveTimeout = 5 * time.Second

// pendingSave buffers the latest document for one room between
// flushes. At most one timer exists per room.
type pendingSave struct {
	content string
	dirty   bool
	timer   *time.Timer
}

// RoomSaver coalesces content-change events into at most one store
// write per room per interval. A flush tick that finds a clean entry
// cancels itself, so an abandoned room leaks no timer. Write failures
// are logged and dropped; the next edit re-arms the cycle.
type RoomSaver struct {
	roomRepo repository.RoomRepository
	interval time.Duration

	mu      sync.Mutex
	pending map[uuid.UUID]*pendingSave
	closed  bool
}

func NewRoomSaver(roomRepo repository.RoomRepository, interval time.Duration) *RoomSaver {
	return &RoomSaver{
		roomRepo: roomRepo,
		interval: interval,
		pending:  make(map[uuid.UUID]*pendingSave),
	}
}

// QueueContent records the newest full-document value for a room and
// arms the flush timer if none is running. It never blocks on I/O.
func (s *RoomSaver) QueueContent(roomID uuid.UUID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if entry, ok := s.pending[roomID]; ok {
		entry.content = content
		entry.dirty = true
		return
	}

	entry := &pendingSave{content: content, dirty: true}
	entry.timer = time.AfterFunc(s.interval, func() {
		s.flush(roomID)
	})
	s.pending[roomID] = entry
}

func (s *RoomSaver) flush(roomID uuid.UUID) {
	s.mu.Lock()

	entry, ok := s.pending[roomID]
	if !ok {
		s.mu.Unlock()
		return
	}

	if !entry.dirty {
		// Quiescent room: drop the entry so no timer stays armed.
		delete(s.pending, roomID)
		s.mu.Unlock()
		return
	}

	content := entry.content
	entry.dirty = false
	s.mu.Unlock()

	s.save(roomID, content)

	// Re-arm only after the write has returned, so a store slower than
	// the interval never gets two in-flight writes for one room, and an
	// older snapshot can never land after a newer one.
	s.mu.Lock()
	if _, ok := s.pending[roomID]; ok && !s.closed {
		entry.timer.Reset(s.interval)
	}
	s.mu.Unlock()
}

func (s *RoomSaver) save(roomID uuid.UUID, content string) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	err := s.roomRepo.UpdateContent(ctx, roomID, content)
	metric.RecordRoomSave(err)
	if err != nil {
		slog.Error(
			"flush room content",
			slog.Any(constant.Error, err),
			slog.String(constant.RoomID, roomID.String()),
		)
	}
}

// Close stops every timer and performs one final write for each room
// that still has unsaved content.
func (s *RoomSaver) Close() {
	s.mu.Lock()

	s.closed = true

	unsaved := make(map[uuid.UUID]string, len(s.pending))
	for roomID, entry := range s.pending {
		entry.timer.Stop()
		if entry.dirty {
			unsaved[roomID] = entry.content
		}
		delete(s.pending, roomID)
	}
	s.mu.Unlock()

	for roomID, content := range unsaved {
		s.save(roomID, content)
	}
}
