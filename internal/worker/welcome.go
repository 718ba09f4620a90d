package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/internal/queue"
	"github.com/filebox/backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notifier delivers the welcome notification. Mail transport lives
// outside this core; the default implementation just logs.
type Notifier interface {
	Notify(ctx context.Context, user *models.User) error
}

type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, user *models.User) error {
	logger.InfoWithUser(user.ID.String(), "welcome_email_sent", map[string]interface{}{
		"email": user.Email,
	})
	return nil
}

// WelcomeProcessor handles sendWelcomeEmail jobs.
type WelcomeProcessor struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewWelcomeProcessor(db *gorm.DB, notifier Notifier) *WelcomeProcessor {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &WelcomeProcessor{DB: db, Notifier: notifier}
}

func (p *WelcomeProcessor) Handle(ctx context.Context, payload []byte) error {
	var data queue.WelcomePayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if data.UserID == "" {
		return errors.New("Missing userId")
	}

	userID, err := uuid.Parse(data.UserID)
	if err != nil {
		return errors.New("User not found")
	}

	var user models.User
	err = p.DB.WithContext(ctx).First(&user, "id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.New("User not found")
		}
		return fmt.Errorf("failed loading user: %w", err)
	}

	return p.Notifier.Notify(ctx, &user)
}
