package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sharepad/sharepad/internal/domain/input"
	"github.com/sharepad/sharepad/internal/domain/models"
	"github.com/sharepad/sharepad/internal/domain/output"
)

// RoomRepository is the room store: directory CRUD, the membership
// list, and the two document write paths used by the realtime core.
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, in *input.ListRoomsInput) ([]output.RoomListItem, error)

	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	UpdateMode(ctx context.Context, id uuid.UUID, mode string) error

	AddUserToRoom(ctx context.Context, userID, roomID uuid.UUID) error
	RemoveUserFromRoom(ctx context.Context, userID, roomID uuid.UUID) error
	IsUserInRoom(ctx context.Context, userID, roomID uuid.UUID) (bool, error)
	CountUsersInRoom(ctx context.Context, roomID uuid.UUID) (int, error)
	TrimRoomUsers(ctx context.Context, roomID uuid.UUID, maxUsers int) error
}

type roomRepo struct {
	db *sqlx.DB
}

func NewRoomRepo(db *sqlx.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO rooms (id, host, name, description, max_users, hashed_password, has_password, content, mode)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		room.ID,
		room.Host,
		room.Name,
		room.Description,
		room.MaxUsers,
		room.HashedPassword,
		room.HasPassword,
		room.Content,
		room.Mode,
	)

	return err
}

func (r *roomRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room

	err := r.db.GetContext(ctx, &room, "SELECT * FROM rooms WHERE id = $1", id)
	if err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *roomRepo) Update(ctx context.Context, room *models.Room) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE rooms
		 SET name = $1, description = $2, max_users = $3, hashed_password = $4, has_password = $5, updated_at = $6
		 WHERE id = $7`,
		room.Name,
		room.Description,
		room.MaxUsers,
		room.HashedPassword,
		room.HasPassword,
		time.Now(),
		room.ID,
	)

	return err
}

func (r *roomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = $1", id)

	return err
}

func (r *roomRepo) List(ctx context.Context, in *input.ListRoomsInput) ([]output.RoomListItem, error) {
	rooms := make([]output.RoomListItem, 0)

	query := `
		SELECT r.id, r.host, r.name, r.description, r.max_users, r.has_password, r.created_at,
		       count(ru.user_id) AS current_users
		FROM rooms r
		LEFT JOIN room_users ru ON r.id = ru.room_id
		WHERE r.name ILIKE '%' || $1 || '%'
		GROUP BY r.id
		ORDER BY r.created_at DESC
	`

	args := []any{in.Filter}

	if in.RecordsPerPage > 0 {
		// Fetch one extra record so the caller can tell whether a
		// next page exists.
		query += " LIMIT $2 OFFSET $3"
		args = append(args, in.RecordsPerPage+1, in.Page*in.RecordsPerPage)
	}

	err := r.db.SelectContext(ctx, &rooms, query, args...)
	if err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *roomRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	res, err := r.db.ExecContext(
		ctx,
		"UPDATE rooms SET content = $1, updated_at = $2 WHERE id = $3",
		content,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update room content: %w", err)
	}

	if aff, err := res.RowsAffected(); err == nil && aff == 0 {
		return fmt.Errorf("update content: room %s not found", id)
	}

	return nil
}

func (r *roomRepo) UpdateMode(ctx context.Context, id uuid.UUID, mode string) error {
	res, err := r.db.ExecContext(
		ctx,
		"UPDATE rooms SET mode = $1, updated_at = $2 WHERE id = $3",
		mode,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update room mode: %w", err)
	}

	if aff, err := res.RowsAffected(); err == nil && aff == 0 {
		return fmt.Errorf("update mode: room %s not found", id)
	}

	return nil
}

func (r *roomRepo) AddUserToRoom(ctx context.Context, userID, roomID uuid.UUID) error {
	_, err := r.db.ExecContext(
		ctx,
		"INSERT INTO room_users (room_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		roomID,
		userID,
	)

	return err
}

func (r *roomRepo) RemoveUserFromRoom(ctx context.Context, userID, roomID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM room_users WHERE room_id = $1 AND user_id = $2", roomID, userID)

	return err
}

func (r *roomRepo) IsUserInRoom(ctx context.Context, userID, roomID uuid.UUID) (bool, error) {
	var exists bool

	err := r.db.GetContext(
		ctx,
		&exists,
		"SELECT EXISTS (SELECT 1 FROM room_users WHERE room_id = $1 AND user_id = $2)",
		roomID,
		userID,
	)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *roomRepo) CountUsersInRoom(ctx context.Context, roomID uuid.UUID) (int, error) {
	var count int

	err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM room_users WHERE room_id = $1", roomID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// TrimRoomUsers drops the most recent memberships until the room fits
// the new capacity. Used when a host shrinks max_users below the
// current member count.
func (r *roomRepo) TrimRoomUsers(ctx context.Context, roomID uuid.UUID, maxUsers int) error {
	_, err := r.db.ExecContext(
		ctx,
		`DELETE FROM room_users
		 WHERE room_id = $1 AND user_id NOT IN (
		     SELECT user_id FROM room_users
		     WHERE room_id = $1
		     ORDER BY created_at ASC
		     LIMIT $2
		 )`,
		roomID,
		maxUsers,
	)

	return err
}
