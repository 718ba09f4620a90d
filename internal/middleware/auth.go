package middleware

import (
	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/internal/services"
	"github.com/filebox/backend/pkg/logger"
	"github.com/filebox/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const currentUserKey = "currentUser"

// TokenHeader carries the opaque session token on authenticated calls.
const TokenHeader = "X-Token"

type AuthMiddleware struct {
	Auth *services.AuthService
}

func NewAuthMiddleware(auth *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{Auth: auth}
}

func CORS() fiber.Handler {
	return cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Token",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	})
}

// RequireAuth resolves the X-Token session and loads the user behind it.
// Any failure answers a uniform 401.
func (a *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	token := c.Get(TokenHeader)
	user, err := a.Auth.WhoAmI(c.Context(), token)
	if err != nil {
		logger.Warn("session_rejected", map[string]interface{}{
			"ip":   c.IP(),
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
	}

	c.Locals(currentUserKey, user)
	return c.Next()
}

// OptionalAuth loads the user when a valid token is present and stays
// silent otherwise, for endpoints that also serve public content.
func (a *AuthMiddleware) OptionalAuth(c *fiber.Ctx) error {
	token := c.Get(TokenHeader)
	if token == "" {
		return c.Next()
	}

	user, err := a.Auth.WhoAmI(c.Context(), token)
	if err != nil {
		return c.Next()
	}

	c.Locals(currentUserKey, user)
	return c.Next()
}

func GetCurrentUser(c *fiber.Ctx) *models.User {
	value := c.Locals(currentUserKey)
	if value == nil {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
