// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"time"
)

// AuthToken represents a bearer credential issued at login or registration.
// Only the SHA-256 hash of the token is stored; the raw value is returned
// to the client exactly once.
type AuthToken struct {
	ID         int64        `json:"id"`
	TokenHash  string       `json:"-"` // Never expose hash in JSON
	UserID     int64        `json:"user_id"`
	LastUsedAt sql.NullTime `json:"last_used_at,omitempty"`
	ExpiresAt  time.Time    `json:"expires_at"`
	CreatedAt  time.Time    `json:"created_at"`
}

// GenerateToken generates a new random bearer token.
// Returns the raw token to hand to the client.
func GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// HashToken creates a SHA-256 hash of a raw token for storage and lookup.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// IsExpired checks if the token has expired at the given instant.
func (t *AuthToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
