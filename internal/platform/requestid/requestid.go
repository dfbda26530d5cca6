// Package requestid generates opaque request correlation identifiers.
package requestid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const idBytes = 16

// New returns a fresh 32-character hex identifier.
func New() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
