package models

type JobKind string

const (
	JobKindGenerateThumbnails JobKind = "generateImageThumbnail"
	JobKindSendWelcomeEmail   JobKind = "sendWelcomeEmail"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job is one queued unit of background work. Rows double as the queue:
// the worker claims the oldest pending row, runs the handler registered
// for its kind and records the outcome. There is no retry machinery.
type Job struct {
	BaseModel
	Kind      JobKind   `json:"kind" gorm:"type:varchar(64);not null;index"`
	Payload   string    `json:"payload" gorm:"type:text;not null"`
	Status    JobStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	LastError *string   `json:"lastError,omitempty" gorm:"type:text"`
}

func (Job) TableName() string {
	return "jobs"
}
