package queue

import (
	"context"
	"time"

	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/pkg/logger"
	"gorm.io/gorm"
)

// Handler processes the JSON payload of one job. A returned error marks
// the job failed; there are no retries.
type Handler func(ctx context.Context, payload []byte) error

// Worker polls the jobs table and dispatches pending jobs to the handler
// registered for their kind, one job at a time.
type Worker struct {
	db           *gorm.DB
	handlers     map[models.JobKind]Handler
	pollInterval time.Duration
	done         chan struct{}
}

func NewWorker(db *gorm.DB, pollInterval time.Duration) *Worker {
	if pollInterval == 0 {
		pollInterval = 2 * time.Second
	}
	return &Worker{
		db:           db,
		handlers:     make(map[models.JobKind]Handler),
		pollInterval: pollInterval,
		done:         make(chan struct{}),
	}
}

func (w *Worker) Register(kind models.JobKind, handler Handler) {
	w.handlers[kind] = handler
}

// Start recovers jobs stranded in "processing" by a previous run, then
// polls until Stop is called or ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.recoverStale()
	go w.run(ctx)
	logger.Info("worker_started", map[string]interface{}{
		"poll_interval": w.pollInterval.String(),
	})
}

func (w *Worker) Stop() {
	close(w.done)
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			for w.ProcessNext(ctx) {
			}
		}
	}
}

// ProcessNext claims and runs the oldest pending job. It reports whether
// a job was processed so callers can drain the backlog in a loop.
func (w *Worker) ProcessNext(ctx context.Context) bool {
	var job models.Job
	err := w.db.WithContext(ctx).
		Where("status = ?", models.JobStatusPending).
		Order("created_at ASC").
		First(&job).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("job_poll_failed", err, nil)
		}
		return false
	}

	claim := w.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ? AND status = ?", job.ID, models.JobStatusPending).
		Update("status", models.JobStatusProcessing)
	if claim.Error != nil || claim.RowsAffected == 0 {
		return false
	}

	handler, ok := w.handlers[job.Kind]
	if !ok {
		w.markFailed(&job, "no handler registered for kind "+string(job.Kind))
		return true
	}

	if err := handler(ctx, []byte(job.Payload)); err != nil {
		w.markFailed(&job, err.Error())
		return true
	}

	if err := w.db.Model(&models.Job{}).Where("id = ?", job.ID).Update("status", models.JobStatusCompleted).Error; err != nil {
		logger.Error("job_complete_update_failed", err, map[string]interface{}{
			"job_id": job.ID.String(),
		})
		return true
	}

	logger.Info("job_completed", map[string]interface{}{
		"job_id": job.ID.String(),
		"kind":   string(job.Kind),
	})
	return true
}

func (w *Worker) markFailed(job *models.Job, reason string) {
	logger.Error("job_failed", nil, map[string]interface{}{
		"job_id": job.ID.String(),
		"kind":   string(job.Kind),
		"reason": reason,
	})

	updates := map[string]interface{}{
		"status":     models.JobStatusFailed,
		"last_error": reason,
	}
	if err := w.db.Model(&models.Job{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
		logger.Error("job_failed_update_failed", err, map[string]interface{}{
			"job_id": job.ID.String(),
		})
	}
}

func (w *Worker) recoverStale() {
	res := w.db.Model(&models.Job{}).
		Where("status = ?", models.JobStatusProcessing).
		Update("status", models.JobStatusPending)
	if res.Error != nil {
		logger.Error("job_stale_recovery_failed", res.Error, nil)
		return
	}
	if res.RowsAffected > 0 {
		logger.Info("jobs_recovered", map[string]interface{}{
			"count": res.RowsAffected,
		})
	}
}
