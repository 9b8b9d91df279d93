package output

import (
	"time"

	"github.com/google/uuid"
)

// RoomListItem is the directory view of a room: everything a lobby
// needs, without the document content or the password hash.
type RoomListItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Host         string    `json:"host" db:"host"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	MaxUsers     int       `json:"max_users" db:"max_users"`
	CurrentUsers int       `json:"current_users" db:"current_users"`
	HasPassword  bool      `json:"has_password" db:"has_password"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// RoomList is a single directory page. HasMore reports whether
// another page exists.
type RoomList struct {
	Rooms   []RoomListItem `json:"rooms"`
	HasMore bool           `json:"hasMore"`
}
