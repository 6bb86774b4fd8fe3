package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// TokenEntropyBytes is the amount of randomness behind every issued token (256 bits).
const TokenEntropyBytes = 32

// GenerateToken returns prefix followed by 32 bytes from crypto/rand, base64url-encoded without padding,
// which keeps the token safe inside an Authorization header.
func GenerateToken(prefix string) (string, error) {
	buf := make([]byte, TokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken is the lookup key stores use in place of the raw token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
