package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grouproster/grouproster/internal/daemon"
)

var seedAfterMigrate bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			if err := d.Migrate(); err != nil {
				return err
			}

			if !seedAfterMigrate {
				return nil
			}

			created, err := d.Seed(cmd.Context())
			if err != nil {
				return err
			}

			if created {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "seed created")
			}

			return err
		})
	},
}

func init() { //nolint: gochecknoinits
	migrateCmd.Flags().BoolVar(&seedAfterMigrate, "seed", false, "create the configured initial user when no user exists")

	rootCmd.AddCommand(migrateCmd)
}
