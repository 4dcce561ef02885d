package user

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/grouproster/grouproster/internal/db/constraint"
	"github.com/grouproster/grouproster/internal/db/models"
	"github.com/grouproster/grouproster/internal/token"
)

// maxTokenAttempts bounds retries when a generated token collides.
const maxTokenAttempts = 3

// dummyDigest is compared against when no user matches, so a lookup miss
// costs about as much as a wrong password.
var dummyDigest = sync.OnceValue(func() string { //nolint:gochecknoglobals
	digest, err := models.HashPassword("grouproster-dummy-password")
	if err != nil {
		return ""
	}

	return digest
})

// Authenticate looks up the user by email, ignoring case, and returns it when
// password matches. A miss, for an unknown email or a wrong password, returns
// (nil, nil). Errors are reserved for storage failures.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		models.CompareDigest(password, dummyDigest())
		authentications.WithLabelValues(resultUnknownUser).Inc()

		return nil, nil //nolint:nilnil
	}

	if err != nil {
		return nil, err
	}

	if u.Authenticate(password) == nil {
		authentications.WithLabelValues(resultMismatch).Inc()
		log.Debug().Uint64("user_id", u.ID).Msg("password mismatch")

		return nil, nil //nolint:nilnil
	}

	authentications.WithLabelValues(resultSuccess).Inc()

	if u.DigestNeedsUpgrade() {
		s.upgradeDigest(ctx, u, password)
	}

	return u, nil
}

// upgradeDigest rehashes a legacy digest with the current algorithm.
// Failure is logged; the login itself already succeeded.
func (s *Store) upgradeDigest(ctx context.Context, u *models.User, password string) {
	if err := u.SetPassword(password); err != nil {
		log.Warn().Err(err).Uint64("user_id", u.ID).Msg("failed to upgrade password digest")

		return
	}

	err := s.db.WithContext(ctx).Model(u).UpdateColumn("password_digest", u.PasswordDigest).Error
	if err != nil {
		log.Warn().Err(err).Uint64("user_id", u.ID).Msg("failed to store upgraded password digest")

		return
	}

	log.Info().Uint64("user_id", u.ID).Msg("password digest upgraded")
}

// RotateAccessToken issues a new access token for user id and returns it.
func (s *Store) RotateAccessToken(ctx context.Context, id uint64) (string, error) {
	return s.rotate(ctx, id, "access_token")
}

// RotateToken issues a new confirmation/reset token for user id and returns it.
func (s *Store) RotateToken(ctx context.Context, id uint64) (string, error) {
	return s.rotate(ctx, id, "token")
}

// RevokeAccessToken clears the access token of user id.
func (s *Store) RevokeAccessToken(ctx context.Context, id uint64) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&models.User{}).Where(whereID, id).Update("access_token", nil)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke access token: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (s *Store) rotate(ctx context.Context, id uint64, column string) (string, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return "", err
	}

	for attempt := 1; ; attempt++ {
		value, err := token.New()
		if err != nil {
			return "", err
		}

		result := db.Model(&models.User{}).Where(whereID, id).Update(column, value)

		switch {
		case result.Error == nil && result.RowsAffected == 0:
			return "", ErrUserNotFound
		case result.Error == nil:
			log.Info().Uint64("user_id", id).Str("column", column).Msg("token rotated")

			return value, nil
		case constraint.IsUniqueViolation(result.Error) && attempt < maxTokenAttempts:
			log.Warn().Uint64("user_id", id).Str("column", column).Int("attempt", attempt).Msg("token collision, retrying")

			continue
		default:
			return "", translate(result.Error, "failed to rotate "+column)
		}
	}
}
