// Package group provides the persistence pipeline for groups.
package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/grouproster/grouproster/internal/db/constraint"
	"github.com/grouproster/grouproster/internal/db/models"
	"github.com/grouproster/grouproster/internal/validation"
)

const (
	whereID   = "id = ?"
	whereSlug = "slug = ?"
)

var (
	// ErrGroupNotFound is returned when a group cannot be found in the database.
	ErrGroupNotFound = errors.New("group not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

var uniques = []constraint.Unique{ //nolint:gochecknoglobals
	{Field: "name", Index: "index_groups_on_name", Table: "groups", Columns: []string{"name"}},
	{Field: "slug", Index: "index_groups_on_slug", Table: "groups", Columns: []string{"slug"}},
}

// Store persists groups.
type Store struct {
	db *gorm.DB
}

// New creates a group store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s.db == nil {
		return nil, ErrDBNil
	}

	return s.db.WithContext(ctx), nil
}

// Create validates g and inserts it. A missing slug is derived from the name.
// Names without Latin letters or digits fold to nothing; they are rejected
// with a format error on slug and need an explicit one.
func (s *Store) Create(ctx context.Context, g *models.Group) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	derived := g.Slug == ""
	g.Normalize()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := check(tx, g, derived); err != nil {
			return err
		}

		if err := tx.Create(g).Error; err != nil {
			return translate(err, "failed to create group")
		}

		log.Info().Uint("group_id", g.ID).Str("slug", g.Slug).Msg("group created")

		return nil
	})
}

// Update validates g and writes its name and slug.
func (s *Store) Update(ctx context.Context, g *models.Group) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	derived := g.Slug == ""
	g.Normalize()

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Group{}).Where(whereID, g.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to query group: %w", err)
		}

		if count == 0 {
			return ErrGroupNotFound
		}

		if err := check(tx, g, derived); err != nil {
			return err
		}

		if err := tx.Model(g).Select("name", "slug", "updated_at").Updates(g).Error; err != nil {
			return translate(err, "failed to update group")
		}

		return nil
	})
}

// Get retrieves a group by ID.
func (s *Store) Get(ctx context.Context, id uint) (*models.Group, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	return find(db, whereID, id)
}

// GetBySlug retrieves a group by slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	if slug == "" {
		return nil, ErrGroupNotFound
	}

	return find(db, whereSlug, slug)
}

// List returns a page of groups ordered by name and the total count.
func (s *Store) List(ctx context.Context, limit, offset int) ([]models.Group, int64, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, 0, err
	}

	var (
		groups []models.Group
		total  int64
	)

	query := db.Model(&models.Group{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	if err := query.Order("name").Limit(limit).Offset(offset).Find(&groups).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, total, nil
}

// Delete removes group id together with its memberships.
func (s *Store) Delete(ctx context.Context, id uint) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	result := db.Delete(&models.Group{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete group: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrGroupNotFound
	}

	log.Info().Uint("group_id", id).Msg("group deleted")

	return nil
}

// check runs the field rules, then looks for other groups holding the
// same name or slug. derived tells whether g.Slug was folded from the name.
func check(tx *gorm.DB, g *models.Group, derived bool) error {
	errs := validation.Group(g)

	if derived && g.Slug == "" && !errs.Has("name", validation.KindPresence) {
		errs = append(errs.Without("slug"), validation.NotDerived("slug"))
	}

	for _, u := range uniques {
		value := g.Name
		if u.Field == "slug" {
			value = g.Slug
		}

		if value == "" || errs.Has(u.Field, validation.KindFormat) {
			continue
		}

		var count int64
		if err := tx.Model(&models.Group{}).
			Where(u.Field+" = ?", value).
			Where("id <> ?", g.ID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check %s uniqueness: %w", u.Field, err)
		}

		if count > 0 {
			errs = append(errs, validation.Taken(u.Field))
		}
	}

	return errs.OrNil()
}

func find(db *gorm.DB, query string, arg any) (*models.Group, error) {
	var g models.Group

	err := db.Where(query, arg).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query group: %w", err)
	}

	return &g, nil
}

func translate(err error, msg string) error {
	translated := constraint.Translate(err, uniques...)
	if _, ok := validation.As(translated); ok {
		return translated
	}

	return fmt.Errorf("%s: %w", msg, err)
}
