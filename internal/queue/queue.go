package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/pkg/logger"
	"gorm.io/gorm"
)

// Queue persists background jobs in the jobs table. The server process
// enqueues; a worker process drains. Delivery is at-least-once: a job
// claimed by a worker that dies before finishing stays in "processing"
// and is recovered on worker startup.
type Queue struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Queue {
	return &Queue{DB: db}
}

func (q *Queue) Enqueue(ctx context.Context, kind models.JobKind, payload interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed encoding job payload: %w", err)
	}

	job := models.Job{
		Kind:    kind,
		Payload: string(encoded),
		Status:  models.JobStatusPending,
	}
	if err := q.DB.WithContext(ctx).Create(&job).Error; err != nil {
		return fmt.Errorf("failed enqueueing %s job: %w", kind, err)
	}

	logger.Info("job_enqueued", map[string]interface{}{
		"job_id": job.ID.String(),
		"kind":   string(kind),
	})
	return nil
}
