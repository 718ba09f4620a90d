package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/internal/queue"
	"github.com/filebox/backend/internal/session"
	"github.com/filebox/backend/internal/storage"
	"github.com/filebox/backend/pkg/utils"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.File{}, &models.Job{}); err != nil {
		t.Fatalf("failed migrating test database: %v", err)
	}
	return db
}

func newTestAuthService(t *testing.T) (*AuthService, *session.MemoryStore) {
	t.Helper()
	db := newTestDB(t)
	sessions := session.NewMemoryStore()
	t.Cleanup(sessions.Close)
	return NewAuthService(db, sessions, queue.New(db), time.Hour), sessions
}

func newTestFileService(t *testing.T, store storage.Store) *FileService {
	t.Helper()
	db := newTestDB(t)
	if store == nil {
		local, err := storage.NewLocalStore(t.TempDir())
		if err != nil {
			t.Fatalf("failed creating local store: %v", err)
		}
		store = local
	}
	return NewFileService(db, store, queue.New(db))
}

func insertUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: utils.HashPassword(password)}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed inserting user: %v", err)
	}
	return &user
}

// brokenStore fails every write so tests can prove nothing gets committed
// when the byte store is down.
type brokenStore struct{}

func (brokenStore) Write(ctx context.Context, key string, data []byte) error {
	return errors.New("disk full")
}

func (brokenStore) Read(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk full")
}

func (brokenStore) Exists(ctx context.Context, key string) (bool, error) {
	return false, errors.New("disk full")
}
