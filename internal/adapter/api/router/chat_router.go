package router

import (
	"github.com/labstack/echo/v4"

	"github.com/teikkkkk/store-chat/internal/adapter/api/handler"
	"github.com/teikkkkk/store-chat/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat-related routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	chatGroup := e.Group("/v1/chat")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.POST("/create-chat", chatHandler.CreateChat)            // room + realtime credential in one call
	chatGroup.GET("/get-room", chatHandler.GetRoom)                   // 404 means call create-chat
	chatGroup.GET("/token", chatHandler.RealtimeToken)                // fresh credential for an existing room
	chatGroup.POST("/rooms/:roomId/messages", chatHandler.SendMessage) // server-side append

	chatGroup.GET("/chat-rooms", chatHandler.ListRooms, adminMiddleware.AdminOnly) // admin roster
}
