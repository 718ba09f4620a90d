package handlers

import (
	"mime"
	"path/filepath"
	"strconv"

	"github.com/filebox/backend/internal/middleware"
	"github.com/filebox/backend/internal/services"
	"github.com/filebox/backend/pkg/linktoken"
	"github.com/filebox/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FilesHandler struct {
	Files *services.FileService
}

func NewFilesHandler(files *services.FileService) *FilesHandler {
	return &FilesHandler{Files: files}
}

type createFileRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

func (h *FilesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
	}

	var req createFileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, services.ErrMissingName.Error())
	}

	parentID, ok := parseParentID(req.ParentID)
	if !ok {
		return utils.Error(c, fiber.StatusBadRequest, services.ErrParentNotFound.Error())
	}

	record, err := h.Files.Create(c.Context(), currentUser.ID, services.CreateFileInput{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: parentID,
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		return serviceError(c, err)
	}

	return utils.JSON(c, fiber.StatusCreated, record)
}

func (h *FilesHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, services.ErrNotFound.Error())
	}

	record, err := h.Files.Get(c.Context(), currentUser.ID, fileID)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.JSON(c, fiber.StatusOK, record)
}

func (h *FilesHandler) Index(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
	}

	parentID, ok := parseParentID(c.Query("parentId"))
	if !ok {
		// An unparseable parent can never match anything the requester owns.
		return utils.JSON(c, fiber.StatusOK, []struct{}{})
	}

	p := utils.ParsePagination(c)
	records, err := h.Files.List(c.Context(), currentUser.ID, parentID, p.Page, p.Limit)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.JSON(c, fiber.StatusOK, records)
}

func (h *FilesHandler) Publish(c *fiber.Ctx) error {
	return h.setVisibility(c, true)
}

func (h *FilesHandler) Unpublish(c *fiber.Ctx) error {
	return h.setVisibility(c, false)
}

func (h *FilesHandler) setVisibility(c *fiber.Ctx, public bool) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, services.ErrNotFound.Error())
	}

	record, err := h.Files.SetVisibility(c.Context(), currentUser.ID, fileID, public)
	if err != nil {
		return serviceError(c, err)
	}

	return utils.JSON(c, fiber.StatusOK, record)
}

func (h *FilesHandler) Data(c *fiber.Ctx) error {
	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, services.ErrNotFound.Error())
	}

	var requester *uuid.UUID
	if currentUser := middleware.GetCurrentUser(c); currentUser != nil {
		requester = &currentUser.ID
	} else if token := c.Query("token"); token != "" {
		// A signed download link acts for the user it was issued to.
		tokenFileID, tokenUserID, err := linktoken.Validate(token)
		if err == nil && tokenFileID == fileID.String() {
			if grantedID, parseErr := uuid.Parse(tokenUserID); parseErr == nil {
				requester = &grantedID
			}
		}
	}

	size := 0
	if sizeRaw := c.Query("size"); sizeRaw != "" {
		parsed, err := strconv.Atoi(sizeRaw)
		if err != nil {
			parsed = -1
		}
		size = parsed
	}

	data, record, err := h.Files.Download(c.Context(), requester, fileID, size)
	if err != nil {
		return serviceError(c, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(record.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Status(fiber.StatusOK).Send(data)
}

func (h *FilesHandler) Link(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, services.ErrUnauthorized.Error())
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, services.ErrNotFound.Error())
	}

	record, err := h.Files.Get(c.Context(), currentUser.ID, fileID)
	if err != nil {
		return serviceError(c, err)
	}
	if record.IsFolder() {
		return utils.Error(c, fiber.StatusBadRequest, services.ErrFolderNoContent.Error())
	}

	token, err := linktoken.Generate(record.ID.String(), currentUser.ID.String())
	if err != nil {
		return serviceError(c, err)
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"url":   "/files/" + record.ID.String() + "/data?token=" + token,
		"token": token,
	})
}

// parseParentID maps the wire parentId to an internal parent reference:
// "" and "0" are the root sentinel, anything else must be a record id.
func parseParentID(raw string) (*uuid.UUID, bool) {
	if raw == "" || raw == "0" {
		return nil, true
	}
	parsed, err := parseUUID(raw)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}
