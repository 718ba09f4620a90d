package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// The hash must be deterministic: login looks users up by
// (email, password_hash) in a single query, so no per-user salt.
const passwordSalt = "filebox-password-hash-v1"

const pbkdf2Iterations = 4096

func HashPassword(password string) string {
	key := pbkdf2.Key([]byte(password), []byte(passwordSalt), pbkdf2Iterations, 32, sha256.New)
	return hex.EncodeToString(key)
}

func CheckPassword(password, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(hash)) == 1
}
