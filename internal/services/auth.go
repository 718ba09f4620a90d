package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/filebox/backend/internal/models"
	"github.com/filebox/backend/internal/queue"
	"github.com/filebox/backend/internal/session"
	"github.com/filebox/backend/pkg/logger"
	"github.com/filebox/backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const sessionKeyPrefix = "auth_"

// AuthService issues and resolves opaque session tokens. Tokens live in
// the session store under "auth_<token>" with a fixed TTL; there is no
// sliding expiration.
type AuthService struct {
	DB       *gorm.DB
	Sessions session.Store
	Queue    *queue.Queue
	TTL      time.Duration
}

func NewAuthService(db *gorm.DB, sessions session.Store, q *queue.Queue, ttl time.Duration) *AuthService {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{DB: db, Sessions: sessions, Queue: q, TTL: ttl}
}

// Register creates a user and enqueues a welcome email. The enqueue is
// fire-and-forget: a queue failure never fails the registration.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}

	var existing models.User
	err := s.DB.WithContext(ctx).First(&existing, "email = ?", email).Error
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed checking existing user: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: utils.HashPassword(password),
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed creating user: %w", err)
	}

	logger.Info("user_registered", map[string]interface{}{
		"user_id": user.ID.String(),
		"email":   user.Email,
	})

	if err := s.Queue.Enqueue(ctx, models.JobKindSendWelcomeEmail, queue.WelcomePayload{UserID: user.ID.String()}); err != nil {
		logger.Warn("welcome_email_enqueue_failed", map[string]interface{}{
			"user_id": user.ID.String(),
			"error":   err.Error(),
		})
	}

	return &user, nil
}

// Login decodes a "Basic base64(email:password)" Authorization header,
// verifies the credentials and returns a fresh session token.
func (s *AuthService) Login(ctx context.Context, authorizationHeader string) (string, error) {
	email, password, err := parseBasicCredentials(authorizationHeader)
	if err != nil {
		return "", err
	}

	var user models.User
	err = s.DB.WithContext(ctx).
		First(&user, "email = ? AND password_hash = ?", email, utils.HashPassword(password)).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Warn("login_failed", map[string]interface{}{"email": email})
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed looking up user: %w", err)
	}

	token := uuid.NewString()
	s.Sessions.Set(sessionKeyPrefix+token, user.ID.String(), s.TTL)

	logger.InfoWithUser(user.ID.String(), "user_login", map[string]interface{}{
		"email": user.Email,
	})

	return token, nil
}

// Logout destroys the session. An absent or unknown token is Unauthorized.
func (s *AuthService) Logout(token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	if s.Sessions.Del(sessionKeyPrefix+token) == 0 {
		return ErrUnauthorized
	}
	return nil
}

// ResolveSession maps a token to the user id it was issued for. It does
// not refresh the TTL.
func (s *AuthService) ResolveSession(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthorized
	}
	value, ok := s.Sessions.Get(sessionKeyPrefix + token)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

// WhoAmI resolves the token and loads the user record behind it. A
// session whose user no longer exists is Unauthorized.
func (s *AuthService) WhoAmI(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.ResolveSession(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed loading user: %w", err)
	}
	return &user, nil
}

func parseBasicCredentials(header string) (email, password string, err error) {
	if header == "" {
		return "", "", ErrMalformedCredentials
	}

	scheme, encoded, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return "", "", ErrMalformedCredentials
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", ErrMalformedCredentials
	}

	email, password, found = strings.Cut(string(decoded), ":")
	if !found || email == "" || password == "" {
		return "", "", ErrMalformedCredentials
	}

	return strings.ToLower(email), password, nil
}
