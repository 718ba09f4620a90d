package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/internal/queue"
	"github.com/filebox/backend/internal/storage"
	"github.com/filebox/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Widths the thumbnail pipeline produces and the download path accepts.
var ThumbnailWidths = []int{500, 250, 100}

// FileService owns file/folder metadata and the ownership and visibility
// rules around it. Every lookup a non-owner is not allowed to see answers
// with ErrNotFound, never with a "forbidden" that would leak existence.
type FileService struct {
	DB      *gorm.DB
	Storage storage.Store
	Queue   *queue.Queue
}

func NewFileService(db *gorm.DB, store storage.Store, q *queue.Queue) *FileService {
	return &FileService{DB: db, Storage: store, Queue: q}
}

type CreateFileInput struct {
	Name     string
	Type     string
	ParentID *uuid.UUID
	IsPublic bool
	Data     string // base64-encoded bytes, required for non-folder types
}

// Create validates input in a fixed order, durably writes the bytes for
// non-folder types, then commits the metadata record. A failed storage
// write prevents the commit; an orphaned record without bytes must never
// exist. Image uploads enqueue a thumbnail job after the commit.
func (s *FileService) Create(ctx context.Context, owner uuid.UUID, in CreateFileInput) (*models.File, error) {
	if in.Name == "" {
		return nil, ErrMissingName
	}
	if !models.ValidFileType(in.Type) {
		return nil, ErrInvalidType
	}
	fileType := models.FileType(in.Type)

	if fileType != models.FileTypeFolder && in.Data == "" {
		return nil, ErrMissingData
	}

	if in.ParentID != nil {
		var parent models.File
		if err := s.DB.WithContext(ctx).First(&parent, "id = ?", *in.ParentID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed loading parent: %w", err)
		}
		if !parent.IsFolder() {
			return nil, ErrParentNotFolder
		}
	}

	record := models.File{
		Name:     in.Name,
		Type:     fileType,
		ParentID: in.ParentID,
		OwnerID:  owner,
		IsPublic: in.IsPublic,
	}

	if fileType != models.FileTypeFolder {
		data, err := base64.StdEncoding.DecodeString(in.Data)
		if err != nil {
			return nil, ErrMissingData
		}

		storageName := uuid.NewString()
		if err := s.Storage.Write(ctx, storageName, data); err != nil {
			return nil, fmt.Errorf("failed writing file bytes: %w", err)
		}
		record.LocalPath = storageName
	}

	if err := s.DB.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed creating file record: %w", err)
	}

	logger.InfoWithUser(owner.String(), "file_created", map[string]interface{}{
		"file_id":   record.ID.String(),
		"file_name": record.Name,
		"type":      string(record.Type),
		"is_public": record.IsPublic,
	})

	if fileType == models.FileTypeImage {
		payload := queue.ThumbnailPayload{
			UserID: owner.String(),
			FileID: record.ID.String(),
		}
		if err := s.Queue.Enqueue(ctx, models.JobKindGenerateThumbnails, payload); err != nil {
			logger.Warn("thumbnail_enqueue_failed", map[string]interface{}{
				"file_id": record.ID.String(),
				"error":   err.Error(),
			})
		}
	}

	return &record, nil
}

// Get returns the record only to its owner.
func (s *FileService) Get(ctx context.Context, requester, fileID uuid.UUID) (*models.File, error) {
	var file models.File
	err := s.DB.WithContext(ctx).First(&file, "id = ? AND owner_id = ?", fileID, requester).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed loading file: %w", err)
	}
	return &file, nil
}

// List returns one page of the requester's records under the given
// parent. A nil parent means root.
func (s *FileService) List(ctx context.Context, requester uuid.UUID, parentID *uuid.UUID, page, pageSize int) ([]models.File, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 0 {
		page = 0
	}

	query := s.DB.WithContext(ctx).Where("owner_id = ?", requester)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}

	var files []models.File
	if err := query.Offset(page * pageSize).Limit(pageSize).Find(&files).Error; err != nil {
		return nil, fmt.Errorf("failed listing files: %w", err)
	}
	return files, nil
}

// SetVisibility flips isPublic. Only the owner may toggle; anyone else
// gets ErrNotFound and the record is left untouched.
func (s *FileService) SetVisibility(ctx context.Context, requester, fileID uuid.UUID, public bool) (*models.File, error) {
	file, err := s.Get(ctx, requester, fileID)
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).
		Model(&models.File{}).
		Where("id = ?", file.ID).
		Update("is_public", public).Error; err != nil {
		return nil, fmt.Errorf("failed updating visibility: %w", err)
	}

	file.IsPublic = public
	return file, nil
}

// Download returns the stored bytes of a file, or of a thumbnail variant
// when size is non-zero and the record is an image. requester may be nil
// for unauthenticated callers; private files then answer ErrNotFound.
func (s *FileService) Download(ctx context.Context, requester *uuid.UUID, fileID uuid.UUID, size int) ([]byte, *models.File, error) {
	var file models.File
	err := s.DB.WithContext(ctx).First(&file, "id = ?", fileID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed loading file: %w", err)
	}

	if !file.IsPublic {
		if requester == nil || *requester != file.OwnerID {
			return nil, nil, ErrNotFound
		}
	}

	if file.IsFolder() {
		return nil, nil, ErrFolderNoContent
	}

	key := file.LocalPath
	if file.Type == models.FileTypeImage && size != 0 {
		if !validThumbnailWidth(size) {
			return nil, nil, ErrInvalidSize
		}
		key = file.LocalPath + "_" + strconv.Itoa(size)
	}

	exists, err := s.Storage.Exists(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed checking stored bytes: %w", err)
	}
	if !exists {
		// Variant not generated yet, or the original vanished from storage.
		return nil, nil, ErrNotFound
	}

	data, err := s.Storage.Read(ctx, key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed reading stored bytes: %w", err)
	}
	return data, &file, nil
}

func validThumbnailWidth(size int) bool {
	for _, width := range ThumbnailWidths {
		if size == width {
			return true
		}
	}
	return false
}
