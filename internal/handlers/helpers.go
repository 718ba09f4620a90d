package handlers

import (
	"errors"
	"strings"

	"github.com/filebox/backend/internal/services"
	"github.com/filebox/backend/pkg/logger"
	"github.com/filebox/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(value))
}

// serviceError maps service-layer sentinels to HTTP statuses. Unknown
// errors are backing-store failures and answer 500.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case services.IsValidation(err):
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return utils.Error(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
	case errors.Is(err, services.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, services.ErrNotFound.Error())
	default:
		logger.Error("request_failed", err, map[string]interface{}{
			"path": c.Path(),
		})
		return utils.Error(c, fiber.StatusInternalServerError, "Internal server error")
	}
}
