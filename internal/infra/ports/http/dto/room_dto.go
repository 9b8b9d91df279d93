package dto

import (
	"errors"

	"github.com/google/uuid"
)

// CreateRoomRequest is shared by room creation and room edits.
type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxUsers    int    `json:"maxUsers"`
	Password    string `json:"password"`
}

func (r *CreateRoomRequest) Validate() error {
	if len(r.Name) < 1 || len(r.Name) > 32 {
		return errors.New("name must be between 1 and 32 characters")
	}
	if r.MaxUsers < 1 || r.MaxUsers > 32 {
		return errors.New("maxUsers must be between 1 and 32")
	}
	return nil
}

type EnterRoomRequest struct {
	Password string `json:"password"`
}

type RoomIDResponse struct {
	ID uuid.UUID `json:"id"`
}

type VerifyResponse struct {
	ID       uuid.UUID `json:"id"`
	Verified bool      `json:"verified"`
}
