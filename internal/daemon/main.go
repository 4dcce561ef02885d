// Package daemon wires configuration, logging, the database and the stores
// together for the command line.
package daemon

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/grouproster/grouproster/internal/config"
	"github.com/grouproster/grouproster/internal/db/controller/group"
	"github.com/grouproster/grouproster/internal/db/controller/membership"
	"github.com/grouproster/grouproster/internal/db/controller/user"
	"github.com/grouproster/grouproster/internal/db/database"
	"github.com/grouproster/grouproster/internal/db/models"
	"github.com/grouproster/grouproster/internal/logger"
)

// ErrConfigNil is returned when no configuration was given.
var ErrConfigNil = errors.New("config is nil")

// Daemon holds the open database and the stores built on it.
type Daemon struct {
	cfg *config.Config
	db  *gorm.DB

	Users       *user.Store
	Groups      *group.Store
	Memberships *membership.Store
}

// New initialises logging and the password parameters from cfg and opens
// the configured database.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	if err := logger.Init(cfg.Log); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}

	models.HashParams = cfg.Password.Params()

	db, err := database.Open(&cfg.DB)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:         cfg,
		db:          db,
		Users:       user.New(db),
		Groups:      group.New(db),
		Memberships: membership.New(db),
	}, nil
}

// Migrate creates or updates the schema.
func (d *Daemon) Migrate() error {
	if err := database.Migrate(d.db); err != nil {
		return err
	}

	log.Info().Str("driver", d.cfg.DB.Driver).Msg("database migrated")

	return nil
}

// Close releases the database connection.
func (d *Daemon) Close() error {
	return database.Close(d.db)
}
