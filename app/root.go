// Package app implements the command line.
package app

import (
	"github.com/spf13/cobra"

	"github.com/grouproster/grouproster/internal/config"
	"github.com/grouproster/grouproster/internal/daemon"
)

var configPath string // directory holding main.toml

var rootCmd = &cobra.Command{
	Use:   "grouproster",
	Short: "grouproster manages users, groups and group memberships",
	Long: `grouproster manages users, the groups they belong to and the
memberships between them on a SQLite, MySQL or PostgreSQL database.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory containing main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// withDaemon reads the configuration, opens the database and runs fn.
func withDaemon(fn func(d *daemon.Daemon) error) error {
	cfg, err := config.ReadConfig(configPath)
	if err != nil {
		return err
	}

	d, err := daemon.New(&cfg)
	if err != nil {
		return err
	}

	defer func() { _ = d.Close() }()

	return fn(d)
}
