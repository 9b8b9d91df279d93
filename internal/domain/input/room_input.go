package input

import "github.com/google/uuid"

type CreateRoomInput struct {
	Host        string
	Name        string
	Description string
	MaxUsers    int
	Password    string
}

type UpdateRoomInput struct {
	ID          uuid.UUID
	Name        string
	Description string
	MaxUsers    int
	Password    string
}

// ListRoomsInput carries directory pagination and filtering. A zero
// RecordsPerPage returns all matching rooms.
type ListRoomsInput struct {
	Filter         string
	Page           int
	RecordsPerPage int
}
