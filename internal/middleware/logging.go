package middleware

import (
	"time"

	"github.com/filebox/backend/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		c.Locals("requestID", requestID)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		details := map[string]interface{}{
			"method":      c.Method(),
			"path":        c.Path(),
			"status_code": statusCode,
			"latency_ms":  time.Since(start).Milliseconds(),
			"ip":          c.IP(),
			"request_id":  requestID,
		}

		if user := GetCurrentUser(c); user != nil {
			if statusCode >= 400 {
				logger.ErrorWithUser(user.ID.String(), "http_request", err, details)
			} else {
				logger.InfoWithUser(user.ID.String(), "http_request", details)
			}
			return err
		}

		if statusCode >= 400 {
			logger.Error("http_request", err, details)
		} else {
			logger.Info("http_request", details)
		}
		return err
	}
}
