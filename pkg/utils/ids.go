package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewRequestID returns a random identifier for request correlation.
func NewRequestID() string {
	return uuid.NewString()
}

// MD5Hash generates MD5 hash of input string
func MD5Hash(input string) string {
	hash := md5.Sum([]byte(input))
	return hex.EncodeToString(hash[:])
}

// CacheKey normalizes free text before hashing so that "Pizza " and "pizza"
// share an entry.
func CacheKey(text string) string {
	return MD5Hash(strings.Join(strings.Fields(strings.ToLower(text)), " "))
}
