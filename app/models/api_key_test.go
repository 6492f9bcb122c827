package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyIssue(t *testing.T) {
	k := &APIKey{UserID: NewObjectID()}

	raw, err := k.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	assert.True(t, strings.HasPrefix(raw, apiKeyPrefix))
	assert.True(t, strings.HasPrefix(raw, k.KeyPrefix))
	assert.Len(t, k.KeyPrefix, 16)
	assert.Nil(t, k.LastUsedAt)
	assert.True(t, k.IsActive())
	assert.Equal(t, HashAPIKey(raw), k.KeyHash)
	assert.Equal(t, HashAPIKey("  "+raw+"\n"), k.KeyHash)
}

func TestAPIKeyRevoke(t *testing.T) {
	k := &APIKey{UserID: NewObjectID()}
	_, err := k.Issue()
	require.NoError(t, err)

	k.Revoke()

	assert.False(t, k.IsActive())
	assert.NotNil(t, k.RevokedAt)
}

func TestUserDisplayName(t *testing.T) {
	u := User{Name: "Rahim Uddin"}
	assert.Equal(t, "Rahim Uddin", u.DisplayName())

	u.StoreName = "Rahim Electronics"
	assert.Equal(t, "Rahim Electronics", u.DisplayName())
}
