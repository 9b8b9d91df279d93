package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharepad/sharepad/internal/domain/input"
	"github.com/sharepad/sharepad/internal/domain/models"
	"github.com/sharepad/sharepad/internal/domain/output"
	"github.com/sharepad/sharepad/internal/infra/adapters/postgres/repository"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrInvalidPassword = errors.New("invalid password")
	ErrNotHost         = errors.New("user is not the room host")
)

// RoomUsecase covers the room directory and the membership gate. The
// gate enforces capacity and password before a client is allowed to
// open a realtime session; the realtime core itself never re-checks.
type RoomUsecase interface {
	ListRooms(ctx context.Context, in *input.ListRoomsInput) (*output.RoomList, error)
	CreateRoom(ctx context.Context, in *input.CreateRoomInput) (*models.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	UpdateRoom(ctx context.Context, userID uuid.UUID, in *input.UpdateRoomInput) (*models.Room, error)
	DeleteRoom(ctx context.Context, userID, roomID uuid.UUID) error

	EnterRoom(ctx context.Context, userID, roomID uuid.UUID, password string) (*models.Room, error)
	LeaveRoom(ctx context.Context, userID, roomID uuid.UUID) error
	VerifyUser(ctx context.Context, userID, roomID uuid.UUID) (bool, error)
}

type roomUsecase struct {
	roomRepo repository.RoomRepository
	userRepo repository.UserRepository
}

func NewRoomUsecase(roomRepo repository.RoomRepository, userRepo repository.UserRepository) RoomUsecase {
	return &roomUsecase{roomRepo: roomRepo, userRepo: userRepo}
}

func (uc *roomUsecase) ListRooms(ctx context.Context, in *input.ListRoomsInput) (*output.RoomList, error) {
	rooms, err := uc.roomRepo.List(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	list := &output.RoomList{Rooms: rooms}

	// The repository fetched one extra record past the page size.
	if in.RecordsPerPage > 0 && len(rooms) > in.RecordsPerPage {
		list.Rooms = rooms[:in.RecordsPerPage]
		list.HasMore = true
	}

	return list, nil
}

func (uc *roomUsecase) CreateRoom(ctx context.Context, in *input.CreateRoomInput) (*models.Room, error) {
	room := models.NewRoom(in)

	if in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		room.HashedPassword = string(hashed)
		room.HasPassword = true
	}

	if err := uc.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	return room, nil
}

func (uc *roomUsecase) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	room, err := uc.roomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrRoomNotFound
	}

	return room, nil
}

func (uc *roomUsecase) UpdateRoom(ctx context.Context, userID uuid.UUID, in *input.UpdateRoomInput) (*models.Room, error) {
	room, err := uc.roomRepo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, ErrRoomNotFound
	}

	if err := uc.requireHost(ctx, userID, room); err != nil {
		return nil, err
	}

	room.Name = in.Name
	room.Description = in.Description

	// Shrinking capacity evicts surplus members down to the new cap.
	if in.MaxUsers < room.MaxUsers {
		if err := uc.roomRepo.TrimRoomUsers(ctx, room.ID, in.MaxUsers); err != nil {
			return nil, fmt.Errorf("trim room users: %w", err)
		}
	}
	room.MaxUsers = in.MaxUsers

	room.HashedPassword = ""
	room.HasPassword = false
	if in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		room.HashedPassword = string(hashed)
		room.HasPassword = true
	}

	if err := uc.roomRepo.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}

	return room, nil
}

func (uc *roomUsecase) DeleteRoom(ctx context.Context, userID, roomID uuid.UUID) error {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return ErrRoomNotFound
	}

	if err := uc.requireHost(ctx, userID, room); err != nil {
		return err
	}

	return uc.roomRepo.Delete(ctx, roomID)
}

// EnterRoom is the membership gate. Re-entering a room the user is
// already a member of succeeds without password or capacity checks.
func (uc *roomUsecase) EnterRoom(ctx context.Context, userID, roomID uuid.UUID, password string) (*models.Room, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}

	member, err := uc.roomRepo.IsUserInRoom(ctx, userID, roomID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if member {
		return room, nil
	}

	if room.HasPassword {
		if err := bcrypt.CompareHashAndPassword([]byte(room.HashedPassword), []byte(password)); err != nil {
			return nil, ErrInvalidPassword
		}
	}

	count, err := uc.roomRepo.CountUsersInRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("count room users: %w", err)
	}
	if count >= room.MaxUsers {
		return nil, ErrRoomFull
	}

	if err := uc.roomRepo.AddUserToRoom(ctx, userID, roomID); err != nil {
		return nil, fmt.Errorf("add user to room: %w", err)
	}

	return room, nil
}

func (uc *roomUsecase) LeaveRoom(ctx context.Context, userID, roomID uuid.UUID) error {
	return uc.roomRepo.RemoveUserFromRoom(ctx, userID, roomID)
}

func (uc *roomUsecase) VerifyUser(ctx context.Context, userID, roomID uuid.UUID) (bool, error) {
	if _, err := uc.roomRepo.GetByID(ctx, roomID); err != nil {
		return false, ErrRoomNotFound
	}

	return uc.roomRepo.IsUserInRoom(ctx, userID, roomID)
}

func (uc *roomUsecase) requireHost(ctx context.Context, userID uuid.UUID, room *models.Room) error {
	user, err := uc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get current user: %w", err)
	}

	if user.Username != room.Host {
		return ErrNotHost
	}

	return nil
}
