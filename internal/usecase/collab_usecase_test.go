package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sharepad/sharepad/internal/domain/events"
	"github.com/sharepad/sharepad/internal/domain/runtime"
	"github.com/sharepad/sharepad/internal/infra/adapters/memory"
)

type recorderConn struct {
	mu       sync.Mutex
	messages []events.Message
}

func (r *recorderConn) WriteJSON(v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg, ok := v.(events.Message); ok {
		r.messages = append(r.messages, msg)
	}
	return nil
}

func (r *recorderConn) WriteControl(_ int, _ []byte, _ time.Time) error { return nil }

func (r *recorderConn) Close() error { return nil }

func (r *recorderConn) received() []events.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]events.Message(nil), r.messages...)
}

func (r *recorderConn) receivedOfType(eventType string) []events.Message {
	var out []events.Message
	for _, msg := range r.received() {
		if msg.Type == eventType {
			out = append(out, msg)
		}
	}
	return out
}

type collabFixture struct {
	collab CollabUsecase
	repo   *fakeRoomRepo
	saver  *RoomSaver
	reg    memory.SessionRegistry
}

func newCollabFixture(t *testing.T, saveInterval time.Duration) *collabFixture {
	t.Helper()

	repo := newFakeRoomRepo()
	saver := NewRoomSaver(repo, saveInterval)
	t.Cleanup(saver.Close)

	reg := memory.NewSessionRegistry()

	return &collabFixture{
		collab: NewCollabUsecase(reg, repo, saver),
		repo:   repo,
		saver:  saver,
		reg:    reg,
	}
}

func (f *collabFixture) join(t *testing.T, roomID uuid.UUID, username string) (*runtime.Session, *recorderConn) {
	t.Helper()

	conn := &recorderConn{}
	session := runtime.NewSession(roomID, uuid.New(), username, conn)
	f.collab.HandleJoin(context.Background(), session)
	return session, conn
}

func TestContentChangeRelayedToOthersOnly(t *testing.T) {
	f := newCollabFixture(t, time.Hour)
	roomID := uuid.New()

	alice, aliceConn := f.join(t, roomID, "alice")
	_, bobConn := f.join(t, roomID, "bob")

	f.collab.HandleContentChange(context.Background(), alice, events.ContentChangeEvent{Content: "let x = 1"})

	if got := aliceConn.receivedOfType(events.TypeContentChange); len(got) != 0 {
		t.Errorf("sender received %d content-change broadcasts, want 0", len(got))
	}

	got := bobConn.receivedOfType(events.TypeContentChange)
	if len(got) != 1 {
		t.Fatalf("other session received %d content-change broadcasts, want 1", len(got))
	}

	var event events.ContentChangeEvent
	if err := json.Unmarshal(got[0].Data, &event); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}
	if event.Content != "let x = 1" {
		t.Errorf("broadcast content = %q, want %q", event.Content, "let x = 1")
	}
}

func TestChatMessageEchoedToSenderWithIdentity(t *testing.T) {
	f := newCollabFixture(t, time.Hour)
	roomID := uuid.New()

	alice, aliceConn := f.join(t, roomID, "alice")
	_, bobConn := f.join(t, roomID, "bob")

	f.collab.HandleChatMessage(context.Background(), alice, events.ChatMessageEvent{Value: "hi all"})

	for name, conn := range map[string]*recorderConn{"alice": aliceConn, "bob": bobConn} {
		got := conn.receivedOfType(events.TypeChatMessage)
		if len(got) != 1 {
			t.Fatalf("%s received %d chat broadcasts, want 1", name, len(got))
		}

		var event events.ChatBroadcastEvent
		if err := json.Unmarshal(got[0].Data, &event); err != nil {
			t.Fatalf("unmarshal chat broadcast: %v", err)
		}
		if event.Value != "hi all" {
			t.Errorf("chat value = %q, want %q", event.Value, "hi all")
		}
		if event.Username != "alice" {
			t.Errorf("chat username = %q, want %q", event.Username, "alice")
		}
		if event.Timestamp == "" {
			t.Error("chat broadcast has no timestamp")
		}
	}
}

func TestModeChangeRelayedAndPersistedImmediately(t *testing.T) {
	f := newCollabFixture(t, time.Hour)
	roomID := uuid.New()

	alice, aliceConn := f.join(t, roomID, "alice")
	_, bobConn := f.join(t, roomID, "bob")

	f.collab.HandleModeChange(context.Background(), alice, events.ModeChangeEvent{Mode: "css"})

	if got := aliceConn.receivedOfType(events.TypeModeChange); len(got) != 0 {
		t.Errorf("sender received %d mode-change broadcasts, want 0", len(got))
	}
	if got := bobConn.receivedOfType(events.TypeModeChange); len(got) != 1 {
		t.Errorf("other session received %d mode-change broadcasts, want 1", len(got))
	}

	// Mode writes skip the debouncer entirely.
	f.repo.mu.Lock()
	modes := append([]string(nil), f.repo.modes[roomID]...)
	f.repo.mu.Unlock()

	if len(modes) != 1 || modes[0] != "css" {
		t.Errorf("persisted modes = %v, want [css]", modes)
	}
}

func TestJoinAnnouncedBeforeContentArrives(t *testing.T) {
	f := newCollabFixture(t, time.Hour)
	roomID := uuid.New()

	_, aliceConn := f.join(t, roomID, "alice")
	bob, bobConn := f.join(t, roomID, "bob")

	f.collab.HandleContentChange(context.Background(), bob, events.ContentChangeEvent{Content: "x"})

	msgs := aliceConn.received()
	if len(msgs) < 2 {
		t.Fatalf("alice received %d messages, want join then content", len(msgs))
	}
	if msgs[0].Type != events.TypeUserJoined {
		t.Errorf("first message type = %q, want %q", msgs[0].Type, events.TypeUserJoined)
	}

	var presence events.PresenceEvent
	if err := json.Unmarshal(msgs[0].Data, &presence); err != nil {
		t.Fatalf("unmarshal presence: %v", err)
	}
	if presence.Username != "bob" {
		t.Errorf("joined username = %q, want %q", presence.Username, "bob")
	}

	if msgs[1].Type != events.TypeContentChange {
		t.Errorf("second message type = %q, want %q", msgs[1].Type, events.TypeContentChange)
	}

	// The joiner hears nothing about its own arrival.
	if got := bobConn.receivedOfType(events.TypeUserJoined); len(got) != 0 {
		t.Errorf("joiner received %d user-joined broadcasts, want 0", len(got))
	}
}

func TestDisconnectAnnouncesLeaveOnceOnly(t *testing.T) {
	f := newCollabFixture(t, time.Hour)
	roomID := uuid.New()

	_, aliceConn := f.join(t, roomID, "alice")
	bob, _ := f.join(t, roomID, "bob")

	f.collab.HandleDisconnect(context.Background(), bob)
	// Simulate a double close of the same connection.
	f.collab.HandleDisconnect(context.Background(), bob)

	got := aliceConn.receivedOfType(events.TypeUserLeft)
	if len(got) != 1 {
		t.Fatalf("alice received %d user-left broadcasts, want 1", len(got))
	}

	var presence events.PresenceEvent
	if err := json.Unmarshal(got[0].Data, &presence); err != nil {
		t.Fatalf("unmarshal presence: %v", err)
	}
	if presence.Username != "bob" {
		t.Errorf("departed username = %q, want %q", presence.Username, "bob")
	}

	if f.reg.Contains(bob) {
		t.Error("registry still contains the disconnected session")
	}
}

func TestEventsNeverCrossRooms(t *testing.T) {
	f := newCollabFixture(t, time.Hour)
	roomA := uuid.New()
	roomB := uuid.New()

	alice, _ := f.join(t, roomA, "alice")
	_, eveConn := f.join(t, roomB, "eve")

	f.collab.HandleContentChange(context.Background(), alice, events.ContentChangeEvent{Content: "secret"})
	f.collab.HandleChatMessage(context.Background(), alice, events.ChatMessageEvent{Value: "secret"})

	if got := len(eveConn.received()); got != 0 {
		t.Errorf("session in another room received %d messages, want 0", got)
	}
}

func TestContentChangesEventuallyPersisted(t *testing.T) {
	f := newCollabFixture(t, 30*time.Millisecond)
	roomID := uuid.New()

	alice, _ := f.join(t, roomID, "alice")
	_, _ = f.join(t, roomID, "bob")

	for _, content := range []string{"l", "le", "let", "let x", "let x = 1"} {
		f.collab.HandleContentChange(context.Background(), alice, events.ContentChangeEvent{Content: content})
	}

	waitFor(t, time.Second, func() bool {
		writes := f.repo.contentWrites(roomID)
		return len(writes) == 1 && writes[0] == "let x = 1"
	})
}
