// Package membership links users to groups through group_memberships rows.
package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/grouproster/grouproster/internal/db/constraint"
	"github.com/grouproster/grouproster/internal/db/controller/group"
	"github.com/grouproster/grouproster/internal/db/controller/user"
	"github.com/grouproster/grouproster/internal/db/models"
	"github.com/grouproster/grouproster/internal/validation"
)

const (
	whereID         = "id = ?"
	whereUserID     = "user_id = ?"
	wherePair       = "user_id = ? AND group_id = ?"
	joinMemberships = "JOIN group_memberships ON ? = ?"
)

// groups is a reserved word in MySQL 8; qualified columns are passed as
// clause values so the dialect quotes them.
//
//nolint:gochecknoglobals
var (
	groupsID      = clause.Column{Table: "groups", Name: "id"}
	usersID       = clause.Column{Table: "users", Name: "id"}
	memberGroupID = clause.Column{Table: "group_memberships", Name: "group_id"}
	memberUserID  = clause.Column{Table: "group_memberships", Name: "user_id"}
)

var (
	// ErrMembershipNotFound is returned when a user is not a member of a group.
	ErrMembershipNotFound = errors.New("membership not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// pair is reported on group_id, the field a caller picks when joining.
var pair = constraint.Unique{ //nolint:gochecknoglobals
	Field:   "group_id",
	Index:   "index_group_memberships_on_user_id_and_group_id",
	Table:   "group_memberships",
	Columns: []string{"user_id", "group_id"},
}

// Store persists group memberships.
type Store struct {
	db *gorm.DB
}

// New creates a membership store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	return s.db.WithContext(ctx), nil
}

// Add makes user userID a pending member of group groupID.
func (s *Store) Add(ctx context.Context, userID uint64, groupID uint) (*models.GroupMembership, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	m := &models.GroupMembership{UserID: userID, GroupID: groupID}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.User{}, userID, user.ErrUserNotFound); err != nil {
			return err
		}

		if err := mustExist(tx, &models.Group{}, uint64(groupID), group.ErrGroupNotFound); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.GroupMembership{}).Where(wherePair, userID, groupID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check membership: %w", err)
		}

		if count > 0 {
			return validation.Errors{validation.Taken(pair.Field)}
		}

		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			return translatePair(err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint64("user_id", userID).Uint("group_id", groupID).Msg("membership added")

	return m, nil
}

// Groups returns the groups user userID belongs to, whatever the
// acceptance state, ordered by group ID.
func (s *Store) Groups(ctx context.Context, userID uint64) ([]models.Group, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var groups []models.Group

	err = db.Model(&models.Group{}).
		Joins(joinMemberships, memberGroupID, groupsID).
		Where(clause.Eq{Column: memberUserID, Value: userID}).
		Order(clause.OrderByColumn{Column: groupsID}).
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of user: %w", err)
	}

	return groups, nil
}

// Count returns the number of groups user userID belongs to.
func (s *Store) Count(ctx context.Context, userID uint64) (int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&models.GroupMembership{}).Where(whereUserID, userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count groups of user: %w", err)
	}

	return count, nil
}

// Members returns the users of group groupID ordered by user ID.
func (s *Store) Members(ctx context.Context, groupID uint) ([]models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var users []models.User

	err = db.Model(&models.User{}).
		Joins(joinMemberships, memberUserID, usersID).
		Where(clause.Eq{Column: memberGroupID, Value: groupID}).
		Order(clause.OrderByColumn{Column: usersID}).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members of group: %w", err)
	}

	return users, nil
}

// Get returns the membership of user userID in group groupID with both
// sides preloaded.
func (s *Store) Get(ctx context.Context, userID uint64, groupID uint) (*models.GroupMembership, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	var m models.GroupMembership

	err = db.Preload("User").Preload("Group").Where(wherePair, userID, groupID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMembershipNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query membership: %w", err)
	}

	return &m, nil
}

// Accept marks the membership as accepted.
func (s *Store) Accept(ctx context.Context, userID uint64, groupID uint) error {
	return s.setAccepted(ctx, userID, groupID, true)
}

// Reject marks the membership as rejected. The row is kept.
func (s *Store) Reject(ctx context.Context, userID uint64, groupID uint) error {
	return s.setAccepted(ctx, userID, groupID, false)
}

func (s *Store) setAccepted(ctx context.Context, userID uint64, groupID uint, accepted bool) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&models.GroupMembership{}).Where(wherePair, userID, groupID).Update("accepted", accepted)
	if result.Error != nil {
		return fmt.Errorf("failed to update membership: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}

	log.Info().Uint64("user_id", userID).Uint("group_id", groupID).Bool("accepted", accepted).Msg("membership updated")

	return nil
}

// Remove deletes the membership of user userID in group groupID.
func (s *Store) Remove(ctx context.Context, userID uint64, groupID uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Where(wherePair, userID, groupID).Delete(&models.GroupMembership{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove membership: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}

	log.Info().Uint64("user_id", userID).Uint("group_id", groupID).Msg("membership removed")

	return nil
}

// translatePair reports a violation of the (user_id, group_id) index as a
// uniqueness failure and wraps any other error.
func translatePair(err error) error {
	if verrs, ok := validation.As(constraint.Translate(err, pair)); ok {
		return verrs
	}

	return fmt.Errorf("failed to add membership: %w", err)
}

func mustExist(tx *gorm.DB, model any, id uint64, notFound error) error {
	var count int64
	if err := tx.Model(model).Where(whereID, id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to query %T: %w", model, err)
	}

	if count == 0 {
		return notFound
	}

	return nil
}
