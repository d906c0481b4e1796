package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

const (
	// ApiKeyPrefix starts every issued secret
	ApiKeyPrefix = "ws_"
	// ApiKeyRandomBytes is the entropy of a secret (64 hex chars)
	ApiKeyRandomBytes = 32

	previewHead = 8
	previewTail = 4
)

var (
	randomRead = rand.Read
	nowFunc    = time.Now
)

// GenerateRandomToken generates length random bytes, hex encoded
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateApiKey returns a new secret of the form ws_<unix millis>_<64 hex chars>
func GenerateApiKey() (string, error) {
	random, err := GenerateRandomToken(ApiKeyRandomBytes)
	if err != nil {
		return "", err
	}
	return ApiKeyPrefix + strconv.FormatInt(nowFunc().UnixMilli(), 10) + "_" + random, nil
}

// HashApiKey returns the lowercase hex SHA-256 digest stored for a secret
func HashApiKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// PreviewApiKey keeps the first 8 and last 4 characters of a secret
func PreviewApiKey(key string) string {
	if len(key) <= previewHead+previewTail {
		return key
	}
	return key[:previewHead] + "..." + key[len(key)-previewTail:]
}
