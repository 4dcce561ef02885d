package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/grouproster/grouproster/internal/db/controller/group"
	"github.com/grouproster/grouproster/internal/db/models"
)

// ErrSeedIncomplete is returned when the seed section lacks a required value.
var ErrSeedIncomplete = errors.New("seed needs name, email and password")

// Seed creates the configured initial user and its groups when the users
// table is empty. It reports whether anything was created.
func (d *Daemon) Seed(ctx context.Context) (bool, error) {
	s := d.cfg.Seed

	if s.Email == "" && s.Name == "" && s.Password == "" {
		log.Debug().Msg("no seed configured")

		return false, nil
	}

	if s.Email == "" || s.Name == "" || s.Password == "" {
		return false, ErrSeedIncomplete
	}

	_, total, err := d.Users.List(ctx, 1, 0)
	if err != nil {
		return false, err
	}

	if total > 0 {
		log.Info().Int64("users", total).Msg("users exist, skipping seed")

		return false, nil
	}

	u := &models.User{Name: s.Name, Email: s.Email, Password: s.Password}
	if err := d.Users.Create(ctx, u); err != nil {
		return false, fmt.Errorf("failed to seed user: %w", err)
	}

	for _, name := range s.Groups {
		g, err := d.seedGroup(ctx, name)
		if err != nil {
			return true, err
		}

		if _, err := d.Memberships.Add(ctx, u.ID, g.ID); err != nil {
			return true, fmt.Errorf("failed to seed membership in %q: %w", name, err)
		}

		if err := d.Memberships.Accept(ctx, u.ID, g.ID); err != nil {
			return true, fmt.Errorf("failed to accept seeded membership in %q: %w", name, err)
		}
	}

	log.Info().Str("email", u.Email).Int("groups", len(s.Groups)).Msg("seed created")

	return true, nil
}

// seedGroup returns the group for name, creating it when its slug is unused.
func (d *Daemon) seedGroup(ctx context.Context, name string) (*models.Group, error) {
	g := &models.Group{Name: name}
	g.Normalize()

	existing, err := d.Groups.GetBySlug(ctx, g.Slug)
	if err == nil {
		return existing, nil
	}

	if !errors.Is(err, group.ErrGroupNotFound) {
		return nil, err
	}

	if err := d.Groups.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to seed group %q: %w", name, err)
	}

	return g, nil
}
