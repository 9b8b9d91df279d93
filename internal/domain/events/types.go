package events

import "encoding/json"

// Realtime event types, client to server.
const (
	TypeContentChange = "content-change"
	TypeModeChange    = "mode-change"
	TypeChatMessage   = "chat-message"
)

// Realtime event types, server to client.
const (
	TypeUserJoined = "user-joined"
	TypeUserLeft   = "user-left"
)

// Message is the envelope for every realtime event.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ContentChangeEvent carries a full-document replacement, not a diff.
// Receivers overwrite local state unconditionally.
type ContentChangeEvent struct {
	Content string `json:"content"`
}

// ModeChangeEvent carries the editor language identifier.
type ModeChangeEvent struct {
	Mode string `json:"mode"`
}

// ChatMessageEvent is what a client sends.
type ChatMessageEvent struct {
	Value string `json:"value"`
}

// ChatBroadcastEvent is what every room member receives back,
// the sender included.
type ChatBroadcastEvent struct {
	Value     string `json:"value"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp"`
}

// PresenceEvent announces a join or leave to the rest of the room.
type PresenceEvent struct {
	Username string `json:"username"`
}
