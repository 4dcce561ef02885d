package config

import "time"

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	Driver          string        `mapstructure:"driver"          toml:"driver"`   // sqlite, mysql or postgres
	Extras          string        `mapstructure:"extras"          toml:"extras"`   // appended to the DSN as is
	Host            string        `mapstructure:"host"            toml:"host"`     // mysql / postgres host
	Port            int           `mapstructure:"port"            toml:"port"`     // mysql / postgres port
	User            string        `mapstructure:"user"            toml:"user"`     // mysql / postgres user
	Password        string        `mapstructure:"password"        toml:"password"` // mysql / postgres password
	Name            string        `mapstructure:"name"            toml:"name"`     // mysql / postgres database name
	Path            string        `mapstructure:"path"            toml:"path"`     // sqlite file, ":memory:" for in-memory
	MaxOpenConns    int           `mapstructure:"maxOpenConns"    toml:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"    toml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime" toml:"connMaxLifetime"`
	SlowThreshold   time.Duration `mapstructure:"slowThreshold"   toml:"slowThreshold"` // slow sql warning threshold
	LogLevel        string        `mapstructure:"logLevel"        toml:"logLevel"`      // silent, error, warn, info
}

// InMemory reports whether the database is an in-memory sqlite database.
func (d *DB) InMemory() bool {
	return d.Driver == DriverSQLite && (d.Path == ":memory:" || d.Path == "file::memory:")
}
