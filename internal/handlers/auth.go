package handlers

import (
	"github.com/filebox/backend/internal/middleware"
	"github.com/filebox/backend/internal/services"
	"github.com/filebox/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, services.ErrMissingEmail.Error())
	}

	user, err := h.Auth.Register(c.Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.JSON(c, fiber.StatusCreated, fiber.Map{
		"id":    user.ID,
		"email": user.Email,
	})
}

func (h *AuthHandler) Connect(c *fiber.Ctx) error {
	token, err := h.Auth.Login(c.Context(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return serviceError(c, err)
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{"token": token})
}

func (h *AuthHandler) Disconnect(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.Get(middleware.TokenHeader)); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return utils.Error(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"id":    user.ID,
		"email": user.Email,
	})
}
