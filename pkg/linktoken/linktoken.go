// Package linktoken issues short-lived signed tokens that grant download
// access to a single file without a session, so owners can hand out
// temporary links.
package linktoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	secret   = []byte("change-me-in-production")
	tokenTTL = 15 * time.Minute
)

type Claims struct {
	FileID string `json:"fileID"`
	UserID string `json:"userID"`
	jwt.RegisteredClaims
}

func Configure(s string, ttl time.Duration) {
	if s != "" {
		secret = []byte(s)
	}
	if ttl > 0 {
		tokenTTL = ttl
	}
}

func Generate(fileID, userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		FileID: fileID,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fileID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Validate returns the file and user ids of a well-formed, unexpired token.
func Validate(tokenString string) (fileID, userID string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", "", err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	return claims.FileID, claims.UserID, nil
}
