// Package token generates the opaque random strings stored in users.token
// and users.access_token.
package token

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

// Len is the default token length; 32 base62 characters carry ~190 bits of entropy.
const Len = 32

// alphabet is the set of characters a token is drawn from.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxUnbiased is the largest byte value that maps onto alphabet without modulo bias.
const maxUnbiased = 255 - (256 % len(alphabet))

// New returns a fresh token of the default length.
func New() (string, error) {
	return NewLen(Len)
}

// NewLen returns a fresh token of length characters.
func NewLen(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}

	out := make([]byte, 0, length)
	// request a little more than needed; rejected bytes are rare
	buf := make([]byte, length+length/4+1)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", errors.Wrap(err, "failed to read random bytes")
		}

		for _, b := range buf {
			if int(b) > maxUnbiased {
				continue
			}

			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
