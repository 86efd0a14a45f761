// Package joincode generates and normalizes the short codes students use to
// join a class. Codes are 6 characters from an uppercase alphanumeric
// alphabet; uniqueness is enforced by the class registry, not here.
package joincode

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// Alphabet is the set of characters a join code is drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the fixed join code length.
const Length = 6

// Generate draws a new join code from Alphabet using crypto/rand.
func Generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}

// Normalize uppercases and trims a user-entered code so lookups are
// case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsWellFormed reports whether code has the right length and alphabet after
// normalization.
func IsWellFormed(code string) bool {
	if len(code) != Length {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(Alphabet, r) {
			return false
		}
	}
	return true
}
