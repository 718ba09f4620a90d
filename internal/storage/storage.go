package storage

import (
	"context"
	"fmt"

	"github.com/filebox/backend/internal/config"
)

// Store is durable byte storage rooted at a configured namespace. Keys are
// opaque names generated at upload time; thumbnail variants live beside
// the original under "<key>_<width>".
type Store interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "local":
		return NewLocalStore(cfg.FolderPath)
	case "minio":
		return NewMinIOStore(cfg.MinIO)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
