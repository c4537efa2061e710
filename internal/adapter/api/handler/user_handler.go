package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/teikkkkk/store-chat/internal/usecase"
	"github.com/teikkkkk/store-chat/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

// UserInfo returns the caller's identity; the chat page reads this before
// joining so it can style its own messages.
func (h *UserHandler) UserInfo(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.userUseCase.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}
