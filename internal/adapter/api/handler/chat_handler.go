package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/teikkkkk/store-chat/internal/usecase"
	"github.com/teikkkkk/store-chat/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// CreateChat gets or creates the caller's room and returns it together with
// the realtime-store credential, matching the single-call contract the chat
// page depends on.
func (h *ChatHandler) CreateChat(c echo.Context) error {
	userID := c.Get("uid").(string)

	result, err := h.chatUseCase.CreateChat(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

// GetRoom returns the caller's existing room, or 404 so the client knows to
// call CreateChat first.
func (h *ChatHandler) GetRoom(c echo.Context) error {
	userID := c.Get("uid").(string)

	room, err := h.chatUseCase.GetRoom(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, room)
}

// RealtimeToken mints a fresh realtime-store credential for a returning
// caller whose room already exists.
func (h *ChatHandler) RealtimeToken(c echo.Context) error {
	userID := c.Get("uid").(string)

	firebaseToken, err := h.chatUseCase.RealtimeToken(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"token": firebaseToken})
}

// ListRooms returns the admin roster.
func (h *ChatHandler) ListRooms(c echo.Context) error {
	limit := 50
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			offset = parsedOffset
		}
	}

	rooms, total, err := h.chatUseCase.ListRooms(c.Request().Context(), limit, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, rooms, total, limit, offset)
}

// SendMessage appends a message through the backend, for clients without a
// realtime session of their own.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	roomID := c.Param("roomId")
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, roomID, req.Content)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}
