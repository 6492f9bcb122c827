package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Records are keyed by 24-char hex ObjectIDs so ids stay compatible with the
// document store the catalog was first exported from.

// NewObjectID returns a fresh 24-char lowercase hex id.
func NewObjectID() string {
	return primitive.NewObjectID().Hex()
}

// IsObjectID reports whether s is a 24-char hex id.
func IsObjectID(s string) bool {
	return primitive.IsValidObjectID(strings.TrimSpace(s))
}

// NormalizeObjectID trims and lowercases s; the second result is false when s is not an id.
func NormalizeObjectID(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !primitive.IsValidObjectID(s) {
		return "", false
	}
	return s, true
}

func ensureObjectID(id *string) {
	if *id == "" {
		*id = NewObjectID()
	}
}
