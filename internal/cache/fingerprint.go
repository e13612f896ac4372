package cache

import (
	"crypto/sha256"
	"fmt"
)

// Fingerprint returns the lowercase hex SHA-256 of the raw upload bytes.
// It is the cache key for recognition results.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
