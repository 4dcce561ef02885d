// Package dbtest provides a migrated in-memory database for package tests.
package dbtest

import (
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/grouproster/grouproster/internal/config"
	"github.com/grouproster/grouproster/internal/db/database"
	"github.com/grouproster/grouproster/internal/db/models"
)

// FastHashParams keep password hashing cheap in tests.
var FastHashParams = &argon2id.Params{ //nolint:gochecknoglobals
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Open creates a migrated, foreign-key enforcing in-memory SQLite database
// that is closed when the test ends.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	models.HashParams = FastHashParams

	db, err := database.Open(&config.DB{
		Driver:   config.DriverSQLite,
		Path:     ":memory:",
		LogLevel: "silent",
	})
	require.NoError(t, err, "failed to create test database")

	require.NoError(t, database.Migrate(db), "failed to migrate test database")

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}
