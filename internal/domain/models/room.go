package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sharepad/sharepad/internal/domain/input"
)

const DefaultMode = "javascript"

// Room is one shared editing space. Content and Mode hold the
// authoritative persisted document snapshot; membership lives in the
// room_users table and is exposed through the repository.
type Room struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Host           string    `json:"host" db:"host"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	MaxUsers       int       `json:"max_users" db:"max_users"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	HasPassword    bool      `json:"has_password" db:"has_password"`
	Content        string    `json:"content" db:"content"`
	Mode           string    `json:"mode" db:"mode"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

func NewRoom(in *input.CreateRoomInput) *Room {
	return &Room{
		ID:          uuid.New(),
		Host:        in.Host,
		Name:        in.Name,
		Description: in.Description,
		MaxUsers:    in.MaxUsers,
		Mode:        DefaultMode,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}
