package router

import (
	"github.com/labstack/echo/v4"

	"github.com/teikkkkk/store-chat/internal/adapter/api/handler"
)

// SetupWebSocketRouter mounts the chat relay. Auth happens inside the handler
// because the token arrives as a query parameter, not a header.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/v1/ws/chat/:roomId", wsHandler.HandleChat)
}
