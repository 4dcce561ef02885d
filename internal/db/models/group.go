package models

import (
	"time"

	"github.com/grouproster/grouproster/internal/slug"
)

// Group is a named collection of users. Slug is its URL-safe identifier,
// distinct from the display name.
type Group struct {
	// ID is the unique identifier for the group.
	ID uint `gorm:"primaryKey"`
	// Name is the unique display name of the group.
	Name string `gorm:"size:255;not null;uniqueIndex:index_groups_on_name"`
	// Slug is the unique URL-safe identifier of the group.
	Slug string `gorm:"size:255;not null;uniqueIndex:index_groups_on_slug"`
	// CreatedAt is the timestamp when the group was created (managed by GORM).
	CreatedAt time.Time `gorm:"not null"`
	// UpdatedAt is the timestamp when the group was last updated (managed by GORM).
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name for the Group model.
func (Group) TableName() string {
	return "groups"
}

// Normalize derives a slug from the name when none was given.
func (g *Group) Normalize() {
	if g.Slug == "" {
		g.Slug = slug.Make(g.Name)
	}
}
