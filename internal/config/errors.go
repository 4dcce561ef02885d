package config

import (
	"errors"
)

var (
	// ErrUnsupportedDriver error if config db.driver is none of sqlite, mysql, postgres.
	ErrUnsupportedDriver = errors.New("toml config db.driver must be one of sqlite, mysql, postgres")

	// ErrEmptySQLitePath error if config db.path is empty for the sqlite driver.
	ErrEmptySQLitePath = errors.New("toml config db.path can not be empty for sqlite")

	// ErrEmptyDBHost error if config db.host is empty for a network database.
	ErrEmptyDBHost = errors.New("toml config db.host can not be empty")

	// ErrEmptyDBName error if config db.name is empty for a network database.
	ErrEmptyDBName = errors.New("toml config db.name can not be empty")
)
