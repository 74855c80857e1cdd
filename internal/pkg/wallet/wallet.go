package wallet

import (
	"crypto/rand"
	"fmt"
)

const (
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idLength = 9
)

// NewID generates a 9-character uppercase wallet identifier. Uniqueness is
// enforced by the account store's wallet_id index, not here.
func NewID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate wallet id: %w", err)
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b), nil
}
