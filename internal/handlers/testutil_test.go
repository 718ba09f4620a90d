package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/filebox/backend/internal/middleware"
	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/internal/queue"
	"github.com/filebox/backend/internal/services"
	"github.com/filebox/backend/internal/session"
	"github.com/filebox/backend/internal/storage"
	"github.com/filebox/backend/internal/worker"
	"github.com/filebox/backend/pkg/linktoken"
	"github.com/filebox/backend/pkg/logger"
	"github.com/filebox/backend/pkg/utils"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	sessions *session.MemoryStore
	store    storage.Store
	worker   *queue.Worker
}

var testSetupOnce sync.Once

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		logger.Init()
		linktoken.Configure("test-secret", time.Minute)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.Job{},
	)
	if err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	sessions := session.NewMemoryStore()
	t.Cleanup(sessions.Close)

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed creating local storage: %v", err)
	}

	jobQueue := queue.New(db)
	authService := services.NewAuthService(db, sessions, jobQueue, 24*time.Hour)
	fileService := services.NewFileService(db, store, jobQueue)

	appHandler := NewAppHandler(db, sessions)
	authHandler := NewAuthHandler(authService)
	filesHandler := NewFilesHandler(fileService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())

	app.Get("/status", appHandler.Status)
	app.Get("/stats", appHandler.Stats)

	app.Post("/users", authHandler.Register)
	app.Get("/connect", authHandler.Connect)
	app.Get("/disconnect", authHandler.Disconnect)
	app.Get("/users/me", authMiddleware.RequireAuth, authHandler.Me)

	app.Post("/files", authMiddleware.RequireAuth, filesHandler.Create)
	app.Get("/files", authMiddleware.RequireAuth, filesHandler.Index)
	app.Get("/files/:id/data", authMiddleware.OptionalAuth, filesHandler.Data)
	app.Get("/files/:id/link", authMiddleware.RequireAuth, filesHandler.Link)
	app.Put("/files/:id/publish", authMiddleware.RequireAuth, filesHandler.Publish)
	app.Put("/files/:id/unpublish", authMiddleware.RequireAuth, filesHandler.Unpublish)
	app.Get("/files/:id", authMiddleware.RequireAuth, filesHandler.Get)

	jobWorker := queue.NewWorker(db, 10*time.Millisecond)
	jobWorker.Register(models.JobKindGenerateThumbnails, worker.NewThumbnailProcessor(db, store, nil).Handle)
	jobWorker.Register(models.JobKindSendWelcomeEmail, worker.NewWelcomeProcessor(db, nil).Handle)

	return &testEnv{app: app, db: db, sessions: sessions, store: store, worker: jobWorker}
}

// drainJobs synchronously runs every queued job.
func (env *testEnv) drainJobs(t *testing.T) {
	t.Helper()
	for env.worker.ProcessNext(context.Background()) {
	}
}

func createTestUser(t *testing.T, env *testEnv, email, password string) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: utils.HashPassword(password),
	}
	if err := env.db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token := uuid.NewString()
	env.sessions.Set("auth_"+token, user.ID.String(), time.Hour)

	return user, token
}

func tokenHeaders(token string) map[string]string {
	return map[string]string{"X-Token": token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}
	return raw
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw := readBody(t, resp)

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func decodeJSONList(t *testing.T, resp *http.Response) []any {
	t.Helper()

	raw := readBody(t, resp)

	var payload []any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON list response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertBodyError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
