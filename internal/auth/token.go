// Package auth guards the ingest endpoint with a bcrypt-hashed bearer
// token and a per-client token bucket.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenPrefix marks ladderscope ingest tokens
	TokenPrefix = "lsc_it_" // #nosec G101 //nolint:gosec // prefix pattern, not a credential

	// TokenLength is the random part of a token in bytes (hex encoded on output)
	TokenLength = 32
)

// bcryptCost is the cost factor for bcrypt hashing
var bcryptCost = 12

// GenerateToken returns a fresh ingest token: lsc_it_<64 hex chars>.
func GenerateToken() (string, error) {
	buf := make([]byte, TokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(buf), nil
}

// HashToken bcrypt-hashes the secret part of a token for the config file.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret(token)), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken reports whether token matches hash.
func VerifyToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret(token))) == nil
}

// IsValidTokenFormat checks the prefix and hex payload length.
func IsValidTokenFormat(token string) bool {
	if !strings.HasPrefix(token, TokenPrefix) {
		return false
	}
	s := secret(token)
	if len(s) != TokenLength*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// MaskToken keeps the prefix and the first four secret characters:
// lsc_it_a1b2****
func MaskToken(token string) string {
	s := secret(token)
	if !strings.HasPrefix(token, TokenPrefix) || len(s) < 4 {
		return "****"
	}
	return TokenPrefix + s[:4] + "****"
}

func secret(token string) string {
	return strings.TrimPrefix(token, TokenPrefix)
}
