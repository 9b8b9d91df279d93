package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/sharepad/sharepad/internal/application/config"
	"github.com/sharepad/sharepad/internal/application/constant"
	"github.com/sharepad/sharepad/internal/domain/events"
	"github.com/sharepad/sharepad/internal/domain/runtime"
	"github.com/sharepad/sharepad/internal/infra/appctx"
	"github.com/sharepad/sharepad/internal/usecase"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
)

// WebSocketHandler opens the realtime session for a room. The room id
// is connection-time metadata (path param) and the identity comes from
// the JWT context; no in-band join message exists. Room existence is
// not validated here: the membership gate already ran over HTTP.
type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	collabUsecase usecase.CollabUsecase
	userUsecase   usecase.UserUsecase
}

func NewWebSocketHandler(cfg *config.Config, collabUsecase usecase.CollabUsecase, userUsecase usecase.UserUsecase) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		collabUsecase: collabUsecase,
		userUsecase:   userUsecase,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid room id"})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return fmt.Errorf("get user id from context")
	}

	user, err := h.userUsecase.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "current user not found"})
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	session := runtime.NewSession(roomID, userID, user.Username, ws)

	h.collabUsecase.HandleJoin(c.Request().Context(), session)
	defer h.collabUsecase.HandleDisconnect(context.Background(), session)

	if err = ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				// Pings go through the session so they hold the same
				// write lock as broadcasts.
				if err := session.Ping(); err != nil {
					return
				}
			case <-c.Request().Context().Done():
				return
			}
		}
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			h.handleWebsocketError(session, err)
			return nil
		}

		message := new(events.Message)

		if err = json.Unmarshal(msg, message); err != nil {
			// Malformed frames are dropped; the session stays up.
			slog.Error("unmarshal websocket message", slog.Any(constant.Error, err))
			continue
		}

		if err = h.handleMessage(c.Request().Context(), session, message); err != nil {
			slog.Error("handle message", slog.Any(constant.Error, err))
		}
	}
}

func (h *WebSocketHandler) handleMessage(
	ctx context.Context,
	session *runtime.Session,
	msg *events.Message,
) error {
	switch msg.Type {
	case events.TypeContentChange:
		var event events.ContentChangeEvent

		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return fmt.Errorf("unmarshal content-change event: %w", err)
		}

		h.collabUsecase.HandleContentChange(ctx, session, event)

	case events.TypeModeChange:
		var event events.ModeChangeEvent

		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return fmt.Errorf("unmarshal mode-change event: %w", err)
		}

		h.collabUsecase.HandleModeChange(ctx, session, event)

	case events.TypeChatMessage:
		var event events.ChatMessageEvent

		if err := json.Unmarshal(msg.Data, &event); err != nil {
			return fmt.Errorf("unmarshal chat-message event: %w", err)
		}

		h.collabUsecase.HandleChatMessage(ctx, session, event)

	default:
		return errors.New("unknown message type")
	}

	return nil
}

func (h *WebSocketHandler) handleWebsocketError(session *runtime.Session, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info(
				"user disconnected from websocket",
				slog.String(constant.UserName, session.Username),
				slog.String(constant.RoomID, session.RoomID.String()),
			)
		default:
			slog.Error("websocket close error", slog.Any(constant.Error, err))
		}
	} else {
		slog.Error(
			"websocket read",
			slog.Any(constant.Error, err),
		)
	}
}
