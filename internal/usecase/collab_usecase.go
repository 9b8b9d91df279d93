package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sharepad/sharepad/internal/application/constant"
	"github.com/sharepad/sharepad/internal/application/metric"
	"github.com/sharepad/sharepad/internal/domain/events"
	"github.com/sharepad/sharepad/internal/domain/runtime"
	"github.com/sharepad/sharepad/internal/infra/adapters/memory"
	"github.com/sharepad/sharepad/internal/infra/adapters/postgres/repository"
)

// CollabUsecase routes realtime events between the sessions of a room
// and triggers the persistence side effects. Relays never wait on the
// store: content writes go through the saver, and a mode write
// happens after the relay has already gone out.
type CollabUsecase interface {
	HandleJoin(ctx context.Context, session *runtime.Session)
	HandleContentChange(ctx context.Context, session *runtime.Session, event events.ContentChangeEvent)
	HandleModeChange(ctx context.Context, session *runtime.Session, event events.ModeChangeEvent)
	HandleChatMessage(ctx context.Context, session *runtime.Session, event events.ChatMessageEvent)
	HandleDisconnect(ctx context.Context, session *runtime.Session)
}

type collabUsecase struct {
	registry memory.SessionRegistry
	roomRepo repository.RoomRepository
	saver    *RoomSaver
}

func NewCollabUsecase(
	registry memory.SessionRegistry,
	roomRepo repository.RoomRepository,
	saver *RoomSaver,
) CollabUsecase {
	return &collabUsecase{
		registry: registry,
		roomRepo: roomRepo,
		saver:    saver,
	}
}

// HandleJoin registers the session and announces it to the rest of
// the room. Room existence is not checked here: the membership gate
// already did that over HTTP before the socket was opened.
func (u *collabUsecase) HandleJoin(_ context.Context, session *runtime.Session) {
	u.registry.Join(session)

	msg, err := newMessage(events.TypeUserJoined, events.PresenceEvent{Username: session.Username})
	if err != nil {
		slog.Error("encode user-joined", slog.Any(constant.Error, err))
		return
	}

	u.registry.SendToRoomExcept(session.RoomID, session.ID, msg)
}

// HandleContentChange relays the full document to everyone else in
// the room (last writer wins, the sender is never echoed) and hands
// the value to the saver.
func (u *collabUsecase) HandleContentChange(_ context.Context, session *runtime.Session, event events.ContentChangeEvent) {
	metric.RecordEvent(events.TypeContentChange)

	msg, err := newMessage(events.TypeContentChange, event)
	if err != nil {
		slog.Error("encode content-change", slog.Any(constant.Error, err))
		return
	}

	u.registry.SendToRoomExcept(session.RoomID, session.ID, msg)

	u.saver.QueueContent(session.RoomID, event.Content)
}

// HandleModeChange relays the mode to everyone else, then persists it
// in one immediate write. Mode changes are rare, so they skip the
// debouncer.
func (u *collabUsecase) HandleModeChange(ctx context.Context, session *runtime.Session, event events.ModeChangeEvent) {
	metric.RecordEvent(events.TypeModeChange)

	msg, err := newMessage(events.TypeModeChange, event)
	if err != nil {
		slog.Error("encode mode-change", slog.Any(constant.Error, err))
		return
	}

	u.registry.SendToRoomExcept(session.RoomID, session.ID, msg)

	if err := u.roomRepo.UpdateMode(ctx, session.RoomID, event.Mode); err != nil {
		slog.Error(
			"persist room mode",
			slog.Any(constant.Error, err),
			slog.String(constant.RoomID, session.RoomID.String()),
		)
	}
}

// HandleChatMessage stamps the message with the sender identity and a
// display timestamp and delivers it to the whole room, the sender
// included, so every client renders chat through one path. Chat is
// never persisted.
func (u *collabUsecase) HandleChatMessage(_ context.Context, session *runtime.Session, event events.ChatMessageEvent) {
	metric.RecordEvent(events.TypeChatMessage)

	msg, err := newMessage(events.TypeChatMessage, events.ChatBroadcastEvent{
		Value:     event.Value,
		Username:  session.Username,
		Timestamp: time.Now().Format("15:04:05"),
	})
	if err != nil {
		slog.Error("encode chat-message", slog.Any(constant.Error, err))
		return
	}

	u.registry.SendToRoom(session.RoomID, msg)
}

// HandleDisconnect announces the departure before the session leaves
// the group, so the broadcast reaches the remaining members through
// the normal group-send path. A second call for the same session is a
// no-op.
func (u *collabUsecase) HandleDisconnect(_ context.Context, session *runtime.Session) {
	if !u.registry.Contains(session) {
		return
	}

	msg, err := newMessage(events.TypeUserLeft, events.PresenceEvent{Username: session.Username})
	if err != nil {
		slog.Error("encode user-left", slog.Any(constant.Error, err))
	} else {
		u.registry.SendToRoomExcept(session.RoomID, session.ID, msg)
	}

	u.registry.Leave(session)
}

func newMessage(eventType string, v any) (events.Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return events.Message{}, fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	return events.Message{Type: eventType, Data: data}, nil
}
