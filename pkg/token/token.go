// Package token produces opaque, unguessable identifiers for shareable
// feedback links.
package token

import (
	"crypto/rand"
	"fmt"
)

// Length is the fixed length of a generated token.
const Length = 32

// alphabet is URL-safe so tokens can be embedded in a path segment without
// escaping.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// New returns a fixed-length token drawn from a cryptographically strong
// random source. There is no weak fallback: if the strong source is
// unavailable the error is returned instead.
func New() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token.New: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}
