package handlers

import (
	"github.com/filebox/backend/internal/database"
	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/internal/session"
	"github.com/filebox/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AppHandler struct {
	DB       *gorm.DB
	Sessions session.Store
}

func NewAppHandler(db *gorm.DB, sessions session.Store) *AppHandler {
	return &AppHandler{DB: db, Sessions: sessions}
}

func (h *AppHandler) Status(c *fiber.Ctx) error {
	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"db":       database.Ready(h.DB),
		"sessions": h.Sessions.Ping() == nil,
	})
}

func (h *AppHandler) Stats(c *fiber.Ctx) error {
	var users, files int64
	if err := h.DB.Model(&models.User{}).Count(&users).Error; err != nil {
		return serviceError(c, err)
	}
	if err := h.DB.Model(&models.File{}).Count(&files).Error; err != nil {
		return serviceError(c, err)
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"users": users,
		"files": files,
	})
}
