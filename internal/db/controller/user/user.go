// Package user provides the persistence pipeline for users:
// normalize, validate, digest the password, persist.
package user

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grouproster/grouproster/internal/db/constraint"
	"github.com/grouproster/grouproster/internal/db/models"
	"github.com/grouproster/grouproster/internal/validation"
)

const (
	whereID          = "id = ?"
	whereEmail       = "email = ?"
	whereAccessToken = "access_token = ?"
)

var (
	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCurrentPassword is returned when a password change is not
	// confirmed by the current password.
	ErrInvalidCurrentPassword = errors.New("invalid current password")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// uniques maps the users table's unique indexes onto reported fields.
var uniques = []constraint.Unique{ //nolint:gochecknoglobals
	{Field: "email", Index: "index_users_on_email", Table: "users", Columns: []string{"email"}},
	{Field: "access_token", Index: "index_users_on_access_token", Table: "users", Columns: []string{"access_token"}},
	{Field: "token", Index: "index_users_on_token", Table: "users", Columns: []string{"token"}},
}

// updatable lists the columns Update writes. password_digest is added only
// when the caller supplies a new password.
var updatable = []string{"name", "email", "access_token", "token", "preferences", "updated_at"} //nolint:gochecknoglobals

// Store persists users.
type Store struct {
	db *gorm.DB
}

// New creates a user store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	return s.db.WithContext(ctx), nil
}

// Create validates u, digests u.Password and inserts the record.
// On success u.Password is empty and u.Email is in its stored, lower-cased form.
// On failure u keeps its plaintext password, so it can be fixed and retried.
// Validation failures are returned as validation.Errors.
func (s *Store) Create(ctx context.Context, u *models.User) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	u.Normalize()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := check(tx, u, validation.Create); err != nil {
			return err
		}

		err := withDigest(u, func() error {
			return tx.Omit(clause.Associations).Create(u).Error
		})
		if err != nil {
			return translate(err, "failed to create user")
		}

		log.Info().Uint64("user_id", u.ID).Str("email", u.Email).Msg("user created")

		return nil
	})
}

// Update writes name, email, tokens and preferences. The password is left
// alone unless u.Password is set, in which case it is validated and its
// digest replaces the stored one.
func (s *Store) Update(ctx context.Context, u *models.User) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	u.Normalize()

	intent, columns := validation.Update, updatable
	if u.Password != "" {
		intent = validation.ChangePassword
		columns = append(slices.Clone(updatable), "password_digest")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, u.ID); err != nil {
			return err
		}

		if err := check(tx, u, intent); err != nil {
			return err
		}

		write := func() error {
			return tx.Model(u).Select(columns).Updates(u).Error
		}

		var err error
		if intent.SetPassword {
			err = withDigest(u, write)
		} else {
			err = write()
		}

		if err != nil {
			return translate(err, "failed to update user")
		}

		return nil
	})
}

// withDigest digests u.Password and runs write. When write fails the
// plaintext and the previous digest are put back on u.
func withDigest(u *models.User, write func() error) error {
	plaintext, previous := u.Password, u.PasswordDigest

	if err := u.SetPassword(plaintext); err != nil {
		return err
	}

	if err := write(); err != nil {
		u.Password, u.PasswordDigest = plaintext, previous

		return err
	}

	return nil
}

// SetPassword replaces the password of user id without asking for the
// current one (administrative reset).
func (s *Store) SetPassword(ctx context.Context, id uint64, plaintext string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		u, err := find(tx, whereID, id)
		if err != nil {
			return err
		}

		return storePassword(tx, u, plaintext)
	})
}

// ChangePassword replaces the password of user id after verifying current.
func (s *Store) ChangePassword(ctx context.Context, id uint64, current, next string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		u, err := find(tx, whereID, id)
		if err != nil {
			return err
		}

		if !u.VerifyPassword(current) {
			return ErrInvalidCurrentPassword
		}

		return storePassword(tx, u, next)
	})
}

func storePassword(tx *gorm.DB, u *models.User, plaintext string) error {
	u.Password = plaintext

	if err := check(tx, u, validation.ChangePassword); err != nil {
		return err
	}

	if err := u.SetPassword(plaintext); err != nil {
		return err
	}

	if err := tx.Model(u).Update("password_digest", u.PasswordDigest).Error; err != nil {
		return fmt.Errorf("failed to store password: %w", err)
	}

	log.Info().Uint64("user_id", u.ID).Msg("password changed")

	return nil
}

// Get retrieves a user by ID.
func (s *Store) Get(ctx context.Context, id uint64) (*models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	return find(db, whereID, id)
}

// GetByEmail retrieves a user by email, ignoring case.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}

	return find(db, whereEmail, email)
}

// GetByAccessToken retrieves the user holding token.
func (s *Store) GetByAccessToken(ctx context.Context, token string) (*models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	if token == "" {
		return nil, ErrUserNotFound
	}

	return find(db, whereAccessToken, token)
}

// List returns a page of users ordered by ID and the total count.
func (s *Store) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, 0, err
	}

	var (
		users []models.User
		total int64
	)

	query := db.Model(&models.User{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	if err := query.Order("id").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

// Delete removes user id; its memberships are removed by the storage (CASCADE).
func (s *Store) Delete(ctx context.Context, id uint64) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	log.Info().Uint64("user_id", id).Msg("user deleted")

	return nil
}

// check runs the field rules and the email uniqueness lookup.
func check(tx *gorm.DB, u *models.User, intent validation.Intent) error {
	errs := validation.User(u, intent)

	if u.Email != "" {
		var count int64
		if err := tx.Model(&models.User{}).
			Where(whereEmail, u.Email).
			Where("id <> ?", u.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check email uniqueness: %w", err)
		}

		if count > 0 {
			errs = append(errs, validation.Taken("email"))
		}
	}

	return errs.OrNil()
}

func exists(tx *gorm.DB, id uint64) error {
	var count int64
	if err := tx.Model(&models.User{}).Where(whereID, id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to query user: %w", err)
	}

	if count == 0 {
		return ErrUserNotFound
	}

	return nil
}

func find(db *gorm.DB, query string, arg any) (*models.User, error) {
	var u models.User

	err := db.Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// translate turns unique violations into validation errors and wraps the rest.
func translate(err error, msg string) error {
	translated := constraint.Translate(err, uniques...)
	if _, ok := validation.As(translated); ok {
		return translated
	}

	return fmt.Errorf("%s: %w", msg, err)
}
