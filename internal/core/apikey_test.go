package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	rawKey, keyHash := GenerateAPIKey()

	_, err := uuid.Parse(rawKey)
	require.NoError(t, err, "generated key should be a UUID")
	assert.Len(t, keyHash, 64, "sha256 hex digest")
	assert.NotContains(t, keyHash, rawKey)

	assert.True(t, ValidateAPIKey(keyHash, rawKey))
}

func TestGenerateAPIKey_Unpredictable(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		rawKey, _ := GenerateAPIKey()
		assert.False(t, seen[rawKey], "duplicate key generated")
		seen[rawKey] = true
	}
}

func TestAdoptAPIKey(t *testing.T) {
	candidate := uuid.New().String()

	keyHash, err := AdoptAPIKey(candidate)
	require.NoError(t, err)
	assert.Equal(t, HashAPIKey(candidate), keyHash)
	assert.True(t, ValidateAPIKey(keyHash, candidate))
}

func TestAdoptAPIKey_Malformed(t *testing.T) {
	for _, candidate := range []string{"", "not-a-key", "reset", "12345"} {
		_, err := AdoptAPIKey(candidate)
		require.Error(t, err, "candidate %q", candidate)
		assert.True(t, IsValidation(err))
	}
}

func TestValidateAPIKey_RotationInvalidatesOldKey(t *testing.T) {
	oldKey, oldHash := GenerateAPIKey()
	newKey, newHash := GenerateAPIKey()

	assert.True(t, ValidateAPIKey(newHash, newKey))
	assert.False(t, ValidateAPIKey(newHash, oldKey))
	assert.False(t, ValidateAPIKey(oldHash, newKey))
}

func TestValidateAPIKey_WrongCandidate(t *testing.T) {
	rawKey, keyHash := GenerateAPIKey()

	assert.False(t, ValidateAPIKey(keyHash, rawKey[:len(rawKey)-1]))
	assert.False(t, ValidateAPIKey(keyHash, ""))
	// Passing the stored hash itself must not validate.
	assert.False(t, ValidateAPIKey(keyHash, keyHash))
}
