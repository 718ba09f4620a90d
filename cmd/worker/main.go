package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/filebox/backend/internal/config"
	"github.com/filebox/backend/internal/database"
	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/internal/queue"
	"github.com/filebox/backend/internal/storage"
	"github.com/filebox/backend/internal/worker"
	"github.com/filebox/backend/pkg/logger"
)

func main() {
	logger.Init()

	cfg := config.Load()

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("storage initialization failed: %v", err)
	}

	thumbnails := worker.NewThumbnailProcessor(db, store, nil)
	welcome := worker.NewWelcomeProcessor(db, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	jobWorker := queue.NewWorker(db, cfg.Worker.PollInterval)
	jobWorker.Register(models.JobKindGenerateThumbnails, thumbnails.Handle)
	jobWorker.Register(models.JobKindSendWelcomeEmail, welcome.Handle)
	jobWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Printf("shutting down worker due to signal: %s", sig)
	jobWorker.Stop()
}
