package app

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grouproster/grouproster/internal/daemon"
	"github.com/grouproster/grouproster/internal/db/models"
)

var (
	groupName   string
	groupSlug   string
	memberEmail string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups and memberships",
}

var groupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a group; the slug defaults to one derived from the name",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			g := &models.Group{Name: groupName, Slug: groupSlug}
			if err := d.Groups.Create(cmd.Context(), g); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "created group %d (%s)\n", g.ID, g.Slug)

			return err
		})
	},
}

var groupJoinCmd = &cobra.Command{
	Use:   "join",
	Short: "Add a user to a group as a pending member",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			u, err := d.Users.GetByEmail(cmd.Context(), memberEmail)
			if err != nil {
				return err
			}

			g, err := d.Groups.GetBySlug(cmd.Context(), groupSlug)
			if err != nil {
				return err
			}

			m, err := d.Memberships.Add(cmd.Context(), u.ID, g.ID)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s joined %s (%s)\n", u.Email, g.Slug, m.State())

			return err
		})
	},
}

var groupMembersCmd = &cobra.Command{
	Use:   "members",
	Short: "List the members of a group",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			g, err := d.Groups.GetBySlug(cmd.Context(), groupSlug)
			if err != nil {
				return err
			}

			members, err := d.Memberships.Members(cmd.Context(), g.ID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint: mnd
			_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATE")

			for _, u := range members {
				m, err := d.Memberships.Get(cmd.Context(), u.ID, g.ID)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, m.State())
			}

			return w.Flush()
		})
	},
}

func init() { //nolint: gochecknoinits
	groupCreateCmd.Flags().StringVar(&groupName, "name", "", "display name")
	groupCreateCmd.Flags().StringVar(&groupSlug, "slug", "", "URL-safe identifier")
	_ = groupCreateCmd.MarkFlagRequired("name")

	groupJoinCmd.Flags().StringVar(&memberEmail, "email", "", "member email")
	groupJoinCmd.Flags().StringVar(&groupSlug, "group", "", "group slug")
	_ = groupJoinCmd.MarkFlagRequired("email")
	_ = groupJoinCmd.MarkFlagRequired("group")

	groupMembersCmd.Flags().StringVar(&groupSlug, "group", "", "group slug")
	_ = groupMembersCmd.MarkFlagRequired("group")

	groupCmd.AddCommand(groupCreateCmd, groupJoinCmd, groupMembersCmd)
	rootCmd.AddCommand(groupCmd)
}
