package registry

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// secretAlphabet is the symbol set for webhook-routing secrets.
const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// secretLength gives ~190 bits of entropy over the 62-symbol alphabet,
// making collisions and guessing negligible.
const secretLength = 32

// newSecret returns a fresh uniformly random webhook-routing secret.
func newSecret() (string, error) {
	max := big.NewInt(int64(len(secretAlphabet)))
	buf := make([]byte, secretLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("registry: generate secret: %w", err)
		}
		buf[i] = secretAlphabet[n.Int64()]
	}
	return string(buf), nil
}
