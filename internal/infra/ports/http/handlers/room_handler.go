package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sharepad/sharepad/internal/application/constant"
	"github.com/sharepad/sharepad/internal/domain/input"
	"github.com/sharepad/sharepad/internal/infra/appctx"
	"github.com/sharepad/sharepad/internal/infra/ports/http/dto"
	"github.com/sharepad/sharepad/internal/usecase"
)

type RoomHandler struct {
	roomUsecase usecase.RoomUsecase
	userUsecase usecase.UserUsecase
}

func NewRoomHandler(roomUsecase usecase.RoomUsecase, userUsecase usecase.UserUsecase) *RoomHandler {
	return &RoomHandler{roomUsecase: roomUsecase, userUsecase: userUsecase}
}

// ListRoomsHandler serves the public room directory with filtering
// and pagination.
func (h *RoomHandler) ListRoomsHandler(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	recordsPerPage, _ := strconv.Atoi(c.QueryParam("recordsPerPage"))

	list, err := h.roomUsecase.ListRooms(c.Request().Context(), &input.ListRoomsInput{
		Filter:         c.QueryParam("filter"),
		Page:           page,
		RecordsPerPage: recordsPerPage,
	})
	if err != nil {
		slog.Error("list rooms", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list rooms"})
	}

	return c.JSON(http.StatusOK, list)
}

func (h *RoomHandler) CreateRoomHandler(c echo.Context) error {
	var req dto.CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	// The host is recorded by username.
	user, err := h.userUsecase.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "current user not found"})
	}

	room, err := h.roomUsecase.CreateRoom(c.Request().Context(), &input.CreateRoomInput{
		Host:        user.Username,
		Name:        req.Name,
		Description: req.Description,
		MaxUsers:    req.MaxUsers,
		Password:    req.Password,
	})
	if err != nil {
		slog.Error("create room", slog.Any(constant.Error, err))
		return c.JSON(http.StatusConflict, map[string]string{"error": "failed to create room"})
	}

	return c.JSON(http.StatusCreated, dto.RoomIDResponse{ID: room.ID})
}

func (h *RoomHandler) GetRoomHandler(c echo.Context) error {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "invalid room id"})
	}

	room, err := h.roomUsecase.GetRoom(c.Request().Context(), roomID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
	}

	return c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) UpdateRoomHandler(c echo.Context) error {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "invalid room id"})
	}

	var req dto.CreateRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	room, err := h.roomUsecase.UpdateRoom(c.Request().Context(), userID, &input.UpdateRoomInput{
		ID:          roomID,
		Name:        req.Name,
		Description: req.Description,
		MaxUsers:    req.MaxUsers,
		Password:    req.Password,
	})
	if err != nil {
		return h.roomError(c, "update room", err)
	}

	return c.JSON(http.StatusOK, dto.RoomIDResponse{ID: room.ID})
}

func (h *RoomHandler) DeleteRoomHandler(c echo.Context) error {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "invalid room id"})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	if err := h.roomUsecase.DeleteRoom(c.Request().Context(), userID, roomID); err != nil {
		return h.roomError(c, "delete room", err)
	}

	return c.JSON(http.StatusOK, dto.RoomIDResponse{ID: roomID})
}

// EnterRoomHandler is the membership gate: password and capacity are
// enforced here, before any realtime session is allowed.
func (h *RoomHandler) EnterRoomHandler(c echo.Context) error {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "invalid room id"})
	}

	var req dto.EnterRoomRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	room, err := h.roomUsecase.EnterRoom(c.Request().Context(), userID, roomID, req.Password)
	if err != nil {
		return h.roomError(c, "enter room", err)
	}

	return c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) LeaveRoomHandler(c echo.Context) error {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "invalid room id"})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	if err := h.roomUsecase.LeaveRoom(c.Request().Context(), userID, roomID); err != nil {
		slog.Error("leave room", slog.Any(constant.Error, err))
		return c.JSON(http.StatusNotFound, map[string]string{"error": "invalid room id"})
	}

	return c.JSON(http.StatusOK, map[string]uuid.UUID{"id": userID})
}

func (h *RoomHandler) VerifyUserHandler(c echo.Context) error {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room id"})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	verified, err := h.roomUsecase.VerifyUser(c.Request().Context(), userID, roomID)
	if err != nil {
		return h.roomError(c, "verify user", err)
	}

	return c.JSON(http.StatusOK, dto.VerifyResponse{ID: userID, Verified: verified})
}

func (h *RoomHandler) roomError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
	case errors.Is(err, usecase.ErrInvalidPassword):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid password"})
	case errors.Is(err, usecase.ErrRoomFull):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "room is full"})
	case errors.Is(err, usecase.ErrNotHost):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "cannot modify other user's room"})
	default:
		slog.Error(op, slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": op + " failed"})
	}
}
