package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DocumentKey derives the cache key for a remote document URL.
// The key format is: doc:hash(url)
func DocumentKey(url string) string {
	return "doc:" + Hash([]byte(strings.TrimSpace(url)))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
