package utils

import (
	"crypto/sha1"
	"fmt"
)

// HashString returns a stable hex digest used for document snapshot keys.
func HashString(input string) string {
	hash := sha1.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}
