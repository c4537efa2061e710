package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/teikkkkk/store-chat/pkg/response"
	"github.com/teikkkkk/store-chat/pkg/token"
)

// DevTokenHandler issues primary bearer tokens in development, standing in
// for the real backend's login flow.
type DevTokenHandler struct {
	tokens *token.Manager
}

func NewDevTokenHandler(tokens *token.Manager) *DevTokenHandler {
	return &DevTokenHandler{
		tokens: tokens,
	}
}

func (h *DevTokenHandler) GenerateUserToken(c echo.Context) error {
	uid := c.QueryParam("uid")
	if uid == "" {
		uid = "dev-user"
	}

	primaryToken, err := h.tokens.Generate(uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"token": primaryToken,
		"uid":   uid,
	})
}

func (h *DevTokenHandler) GenerateAdminToken(c echo.Context) error {
	uid := c.QueryParam("uid")
	if uid == "" {
		uid = "dev-admin"
	}

	primaryToken, err := h.tokens.Generate(uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"token": primaryToken,
		"uid":   uid,
	})
}
