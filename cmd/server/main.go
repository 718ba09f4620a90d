package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filebox/backend/internal/config"
	"github.com/filebox/backend/internal/database"
	"github.com/filebox/backend/internal/handlers"
	"github.com/filebox/backend/internal/middleware"
	"github.com/filebox/backend/internal/queue"
	"github.com/filebox/backend/internal/services"
	"github.com/filebox/backend/internal/session"
	"github.com/filebox/backend/internal/storage"
	"github.com/filebox/backend/pkg/linktoken"
	"github.com/filebox/backend/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	logger.Init()

	cfg := config.Load()
	linktoken.Configure(cfg.Link.Secret, cfg.Link.TTL)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}
	if minioStore, ok := store.(*storage.MinIOStore); ok {
		if err := minioStore.EnsureBucket(context.Background()); err != nil {
			log.Fatalf("failed ensuring bucket: %v", err)
		}
	}

	sessions := session.NewMemoryStore()
	sessions.StartCleanup(cfg.Session.CleanupInterval)
	defer sessions.Close()

	jobQueue := queue.New(db)

	authService := services.NewAuthService(db, sessions, jobQueue, cfg.Session.TTL)
	fileService := services.NewFileService(db, store, jobQueue)

	appHandler := handlers.NewAppHandler(db, sessions)
	authHandler := handlers.NewAuthHandler(authService)
	filesHandler := handlers.NewFilesHandler(fileService)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	app := fiber.New(fiber.Config{BodyLimit: 100 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())

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

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"storage": cfg.Storage.Driver,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
