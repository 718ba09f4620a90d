package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/internal/queue"
	"github.com/filebox/backend/internal/services"
	"github.com/filebox/backend/internal/storage"
	"github.com/filebox/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resizer produces the bytes of src scaled to the given width.
type Resizer func(src []byte, width int) ([]byte, error)

// ImagingResize is the default Resizer. It keeps the aspect ratio and
// re-encodes in the source format.
func ImagingResize(src []byte, width int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)

	encodeFormat, err := imaging.FormatFromExtension(format)
	if err != nil {
		encodeFormat = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, encodeFormat); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailProcessor handles generateImageThumbnail jobs: it loads the
// original and writes one variant per width next to it. A width that
// fails is logged and skipped; it never aborts the remaining widths.
type ThumbnailProcessor struct {
	DB      *gorm.DB
	Storage storage.Store
	Resize  Resizer
}

func NewThumbnailProcessor(db *gorm.DB, store storage.Store, resize Resizer) *ThumbnailProcessor {
	if resize == nil {
		resize = ImagingResize
	}
	return &ThumbnailProcessor{DB: db, Storage: store, Resize: resize}
}

func (p *ThumbnailProcessor) Handle(ctx context.Context, payload []byte) error {
	var data queue.ThumbnailPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if data.FileID == "" {
		return errors.New("Missing fileId")
	}
	if data.UserID == "" {
		return errors.New("Missing userId")
	}

	fileID, err := uuid.Parse(data.FileID)
	if err != nil {
		return errors.New("File not found")
	}
	ownerID, err := uuid.Parse(data.UserID)
	if err != nil {
		return errors.New("File not found")
	}

	var file models.File
	err = p.DB.WithContext(ctx).First(&file, "id = ? AND owner_id = ?", fileID, ownerID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.New("File not found")
		}
		return fmt.Errorf("failed loading file: %w", err)
	}

	src, err := p.Storage.Read(ctx, file.LocalPath)
	if err != nil {
		// Treated like a failure of every width: logged, variants absent,
		// job still completes.
		logger.Error("thumbnail_source_read_failed", err, map[string]interface{}{
			"file_id": file.ID.String(),
		})
		return nil
	}

	for _, width := range services.ThumbnailWidths {
		resized, err := p.Resize(src, width)
		if err != nil {
			logger.Error("thumbnail_resize_failed", err, map[string]interface{}{
				"file_id": file.ID.String(),
				"width":   width,
			})
			continue
		}

		key := file.LocalPath + "_" + strconv.Itoa(width)
		if err := p.Storage.Write(ctx, key, resized); err != nil {
			logger.Error("thumbnail_write_failed", err, map[string]interface{}{
				"file_id": file.ID.String(),
				"width":   width,
			})
			continue
		}

		logger.Info("thumbnail_generated", map[string]interface{}{
			"file_id": file.ID.String(),
			"width":   width,
		})
	}

	return nil
}
