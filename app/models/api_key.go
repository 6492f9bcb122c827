package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// APIKey stores the hashed credential a client uses against the REST API.
// Only the hash and a display prefix are persisted.
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     string     `gorm:"type:char(24);not null;index" json:"user_id"`
	KeyHash    string     `gorm:"type:char(64);uniqueIndex" json:"-"`
	KeyPrefix  string     `gorm:"type:varchar(20);default:''" json:"key_prefix"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
	RevokedAt  *time.Time `json:"revoked_at"`
	User       User       `gorm:"foreignKey:UserID" json:"-"`
}

var apiKeyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const apiKeyPrefix = "mfx_"

// IsActive reports whether the key can still authenticate
func (k *APIKey) IsActive() bool {
	return k != nil && k.KeyHash != "" && k.RevokedAt == nil
}

// Issue generates a new key, stores its hash on the struct and returns the raw secret.
// Callers must persist the struct after invoking this method.
func (k *APIKey) Issue() (string, error) {
	rawKey, prefix, hash, err := generateAPIKeyMaterial()
	if err != nil {
		return "", err
	}
	k.KeyHash = hash
	k.KeyPrefix = prefix
	k.RevokedAt = nil
	k.LastUsedAt = nil
	return rawKey, nil
}

// Revoke disables the key without deleting the record.
func (k *APIKey) Revoke() {
	now := time.Now()
	k.RevokedAt = &now
}

// HashAPIKey returns the SHA-256 hash for the provided API key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

func generateAPIKeyMaterial() (string, string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", err
	}
	encoded := strings.ToLower(apiKeyEncoding.EncodeToString(b))
	rawKey := apiKeyPrefix + encoded
	if len(rawKey) < 12 {
		return "", "", "", fmt.Errorf("api key generation failed: key too short")
	}
	prefix := rawKey[:min(len(rawKey), 16)]
	return rawKey, prefix, HashAPIKey(rawKey), nil
}
