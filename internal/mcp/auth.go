package mcp

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GenerateToken creates a random bearer token and its bcrypt hash. The
// hash goes into configuration; the plaintext is shown once and never
// stored.
func GenerateToken() (token, hash string, err error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generate token: %w", err)
	}
	token = hex.EncodeToString(raw)

	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hash token: %w", err)
	}
	return token, string(h), nil
}

// VerifyToken checks a presented token against the configured bcrypt
// hash. An empty hash means auth is disabled and everything verifies.
func VerifyToken(hash, token string) bool {
	if hash == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
