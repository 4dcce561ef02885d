// Package database opens the configured gorm connection and migrates the schema.
package database

import (
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/grouproster/grouproster/internal/config"
	"github.com/grouproster/grouproster/internal/db/dsn"
	"github.com/grouproster/grouproster/internal/db/models"
	"github.com/grouproster/grouproster/internal/logger/adapter/gormlog"
)

// Open connects to the configured database.
func Open(cfg *config.DB) (*gorm.DB, error) {
	source, err := dsn.Create(cfg)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector

	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(source)
	case config.DriverMySQL:
		dialector = gormmysql.Open(source)
	case config.DriverPostgres:
		dialector = postgres.Open(source)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlog.New(gormlog.Config{
			Level:                     cfg.LogLevel,
			SlowThreshold:             cfg.SlowThreshold,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get database handle")
	}

	switch {
	case cfg.InMemory():
		// every connection would see its own empty in-memory database
		sqlDB.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 && !cfg.InMemory() {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.ConnMaxLifetime > 0 && !cfg.InMemory() {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	log.Debug().Str("driver", cfg.Driver).Msg("database connected")

	return db, nil
}

// Migrate creates or updates the users, groups and group_memberships tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}

	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get database handle")
	}

	return sqlDB.Close() //nolint:wrapcheck
}
