package core

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateAPIKey mints a fresh random API key and returns the raw key along
// with the hash to persist. The raw key must be shown to the caller exactly
// once and is not recoverable afterwards.
func GenerateAPIKey() (rawKey, keyHash string) {
	rawKey = uuid.New().String()
	return rawKey, HashAPIKey(rawKey)
}

// AdoptAPIKey accepts a caller-supplied key value (administrative override)
// and returns the hash to persist. The candidate must be a well-formed UUID,
// the same shape GenerateAPIKey produces.
func AdoptAPIKey(candidate string) (string, error) {
	if _, err := uuid.Parse(candidate); err != nil {
		return "", validationErrorf("api_key", "not a valid key: %v", err)
	}
	return HashAPIKey(candidate), nil
}

// HashAPIKey returns the sha256 hex digest stored in place of the raw key.
func HashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

// ValidateAPIKey compares a candidate key against a stored hash in constant
// time. Hashing first makes both inputs fixed-length, so the comparison leaks
// nothing about how long a matching prefix is.
func ValidateAPIKey(storedHash, candidate string) bool {
	candidateHash := HashAPIKey(candidate)
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(candidateHash)) == 1
}
