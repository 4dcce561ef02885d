package config

import (
	"github.com/alexedwards/argon2id"

	"github.com/grouproster/grouproster/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode  bool       `mapstructure:"devMode"  toml:"devMode"` // enable dev mode for development
	Title    string     `mapstructure:"title"    toml:"title"`
	DB       DB         `mapstructure:"db"       toml:"db"`
	Log      logger.Log `mapstructure:"log"      toml:"log"`
	Password Password   `mapstructure:"password" toml:"password"`
	Seed     Seed       `mapstructure:"seed"     toml:"seed"`
}

// Password holds the Argon2id parameters for new password digests.
type Password struct {
	Memory      uint32 `mapstructure:"memory"      toml:"memory"` // KiB
	Iterations  uint32 `mapstructure:"iterations"  toml:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism" toml:"parallelism"`
	SaltLength  uint32 `mapstructure:"saltLength"  toml:"saltLength"`
	KeyLength   uint32 `mapstructure:"keyLength"   toml:"keyLength"`
}

// Params returns the argon2id parameters, falling back to the library
// defaults for every zero field.
func (p Password) Params() *argon2id.Params {
	params := *argon2id.DefaultParams

	if p.Memory != 0 {
		params.Memory = p.Memory
	}

	if p.Iterations != 0 {
		params.Iterations = p.Iterations
	}

	if p.Parallelism != 0 {
		params.Parallelism = p.Parallelism
	}

	if p.SaltLength != 0 {
		params.SaltLength = p.SaltLength
	}

	if p.KeyLength != 0 {
		params.KeyLength = p.KeyLength
	}

	return &params
}

// Seed describes an initial user and the groups it joins, created by
// "migrate --seed" when the users table is empty.
type Seed struct {
	Name     string   `mapstructure:"name"     toml:"name"`
	Email    string   `mapstructure:"email"    toml:"email"`
	Password string   `mapstructure:"password" toml:"password"`
	Groups   []string `mapstructure:"groups"   toml:"groups"`
}
