package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grouproster/grouproster/internal/config"
	"github.com/grouproster/grouproster/internal/db/models"
)

func openMemory(t *testing.T) *config.DB {
	t.Helper()

	return &config.DB{Driver: config.DriverSQLite, Path: ":memory:", LogLevel: "silent"}
}

func TestOpenAndMigrate(t *testing.T) {
	db, err := Open(openMemory(t))
	require.NoError(t, err)

	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))

	// running it twice must be harmless
	require.NoError(t, Migrate(db))

	migrator := db.Migrator()
	for _, table := range []string{"users", "groups", "group_memberships"} {
		assert.True(t, migrator.HasTable(table), table)
	}

	for _, idx := range []struct {
		model any
		name  string
	}{
		{&models.User{}, "index_users_on_email"},
		{&models.User{}, "index_users_on_access_token"},
		{&models.User{}, "index_users_on_token"},
		{&models.Group{}, "index_groups_on_name"},
		{&models.Group{}, "index_groups_on_slug"},
		{&models.GroupMembership{}, "index_group_memberships_on_user_id_and_group_id"},
		{&models.GroupMembership{}, "index_group_memberships_on_user_id"},
		{&models.GroupMembership{}, "index_group_memberships_on_group_id"},
	} {
		assert.True(t, migrator.HasIndex(idx.model, idx.name), idx.name)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := Open(openMemory(t))
	require.NoError(t, err)

	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, Migrate(db))

	var enabled int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DB{Driver: "oracle"})
	require.ErrorIs(t, err, config.ErrUnsupportedDriver)
}
