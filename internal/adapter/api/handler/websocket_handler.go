package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/teikkkkk/store-chat/internal/adapter/api/middleware"
	"github.com/teikkkkk/store-chat/internal/domain/entity"
	ws "github.com/teikkkkk/store-chat/internal/infrastructure/websocket"
	"github.com/teikkkkk/store-chat/internal/usecase"
	"github.com/teikkkkk/store-chat/pkg/errors"
	"github.com/teikkkkk/store-chat/pkg/logger"
	"github.com/teikkkkk/store-chat/pkg/response"
)

// WebSocketHandler relays a room's message stream to clients that cannot open
// a realtime-store session themselves: it subscribes the room on their behalf
// and forwards every snapshot, and turns inbound frames into appends.
type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	chatUseCase    *usecase.ChatUseCase
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, chatUseCase *usecase.ChatUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		chatUseCase:    chatUseCase,
	}
}

type inboundFrame struct {
	Content string `json:"content"`
}

type outboundFrame struct {
	Type     string            `json:"type"` // "snapshot" or "error"
	Messages []*entity.Message `json:"messages,omitempty"`
	Message  string            `json:"message,omitempty"`
}

func (h *WebSocketHandler) HandleChat(c echo.Context) error {
	roomID := c.Param("roomId")

	// the browser WebSocket API cannot set headers, so the token rides a query param
	uid, err := h.authMiddleware.VerifyToken(c.QueryParam("token"))
	if err != nil {
		return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
	}

	if _, err := h.chatUseCase.Authorize(c.Request().Context(), uid, roomID); err != nil {
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: uid,
		RoomID: roomID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}
	h.wsManager.Register <- client

	// the subscription outlives the HTTP handler, so it hangs off its own
	// context cancelled when the connection goes away
	connCtx, cancelConn := context.WithCancel(context.Background())

	var mu sync.Mutex
	closed := false

	cancelSub, err := h.chatUseCase.Subscribe(connCtx, uid, roomID, func(msgs []*entity.Message) {
		payload, err := json.Marshal(outboundFrame{Type: "snapshot", Messages: msgs})
		if err != nil {
			return
		}
		mu.Lock()
		if !closed {
			select {
			case client.Send <- payload:
			default:
				logger.Warn("Dropping snapshot for slow relay client: user=%s room=%s", uid, roomID)
			}
		}
		mu.Unlock()
	})
	if err != nil {
		cancelConn()
		h.wsManager.Unregister <- client
		conn.Close()
		return nil
	}

	onClose := func() {
		cancelSub()
		cancelConn()
		mu.Lock()
		closed = true
		mu.Unlock()
	}

	go client.ReadPump(h.wsManager, func(payload []byte) {
		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			return
		}
		if _, err := h.chatUseCase.SendMessage(connCtx, uid, roomID, frame.Content); err != nil {
			errPayload, _ := json.Marshal(outboundFrame{Type: "error", Message: "Failed to send message"})
			mu.Lock()
			if !closed {
				select {
				case client.Send <- errPayload:
				default:
				}
			}
			mu.Unlock()
		}
	}, onClose)
	go client.WritePump()

	return nil
}
