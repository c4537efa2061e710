package router

import (
	"github.com/labstack/echo/v4"

	"github.com/teikkkkk/store-chat/internal/adapter/api/handler"
	"github.com/teikkkkk/store-chat/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	e.GET("/v1/user-info", userHandler.UserInfo, authMiddleware.Authenticate)
}
