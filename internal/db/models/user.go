package models

import (
	"strings"
	"time"
)

// User represents an account that can authenticate with a password and
// belong to any number of groups through GroupMembership rows.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Name is the user's display name.
	Name string `gorm:"size:255;not null"`
	// Email is the login address, always stored lower-cased.
	Email string `gorm:"size:255;not null;uniqueIndex:index_users_on_email"`
	// Password is the transient plaintext waiting to be digested. Never persisted.
	Password string `gorm:"-" json:"-"`
	// PasswordDigest is the one-way salted hash of the password.
	PasswordDigest string `gorm:"size:255;not null" json:"-"`
	// AccessToken is an optional opaque API token, unique when present.
	AccessToken *string `gorm:"size:255;uniqueIndex:index_users_on_access_token"`
	// Token is an optional opaque token (confirmation, reset), unique when present.
	Token *string `gorm:"size:255;uniqueIndex:index_users_on_token"`
	// Preferences is a free-form key/value document.
	Preferences Preferences `gorm:"serializer:json;not null"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `gorm:"not null"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// Normalize brings the record into its canonical stored form.
func (u *User) Normalize() {
	u.Email = NormalizeEmail(u.Email)
	u.AccessToken = nilIfEmpty(u.AccessToken)
	u.Token = nilIfEmpty(u.Token)

	if u.Preferences == nil {
		u.Preferences = Preferences{}
	}
}

// NormalizeEmail returns the canonical form used for storage and comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// nilIfEmpty stores absent tokens as NULL so the unique indexes ignore them.
func nilIfEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}

	return s
}
