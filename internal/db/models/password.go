package models

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// HashParams are the Argon2id parameters used for new digests.
// Set them once at startup, before any digest is computed.
var HashParams = argon2id.DefaultParams //nolint:gochecknoglobals

// bcryptPrefixes mark digests written by bcrypt, e.g. imported records.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"} //nolint:gochecknoglobals

// HashPassword hashes a plaintext password using the Argon2id algorithm
// with a fresh random salt.
func HashPassword(password string) (string, error) {
	digest, err := argon2id.CreateHash(password, HashParams)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}

	return digest, nil
}

// SetPassword digests plaintext into PasswordDigest and drops the plaintext.
func (u *User) SetPassword(plaintext string) error {
	digest, err := HashPassword(plaintext)
	if err != nil {
		return err
	}

	u.PasswordDigest = digest
	u.Password = ""

	return nil
}

// Authenticate returns the user when candidate matches the stored digest
// and nil otherwise.
func (u *User) Authenticate(candidate string) *User {
	if u.VerifyPassword(candidate) {
		return u
	}

	return nil
}

// VerifyPassword verifies candidate against the stored digest in constant time.
// A missing or malformed digest is reported as a mismatch.
func (u *User) VerifyPassword(candidate string) bool {
	return CompareDigest(candidate, u.PasswordDigest)
}

// DigestNeedsUpgrade reports whether the stored digest should be recomputed
// with the current algorithm.
func (u *User) DigestNeedsUpgrade() bool {
	return isBcrypt(u.PasswordDigest)
}

// CompareDigest compares a plaintext candidate with an Argon2id or bcrypt digest.
func CompareDigest(candidate, digest string) bool {
	if digest == "" {
		return false
	}

	if isBcrypt(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(candidate)) == nil
	}

	match, err := argon2id.ComparePasswordAndHash(candidate, digest)
	if err != nil {
		log.Debug().Err(err).Msg("password digest could not be compared")

		return false
	}

	return match
}

func isBcrypt(digest string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(digest, prefix) {
			return true
		}
	}

	return false
}
