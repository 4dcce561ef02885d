package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grouproster/grouproster/internal/daemon"
	"github.com/grouproster/grouproster/internal/db/models"
)

var (
	// ErrAuthenticationFailed is returned by "user authenticate" on a mismatch.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrPasswordSources is returned when both --password and --password-stdin are given.
	ErrPasswordSources = errors.New("--password and --password-stdin are mutually exclusive")
)

var (
	userName      string
	userEmail     string
	userPassword  string
	passwordStdin bool
	accessToken   bool
)

// password returns the --password value or the first line read from stdin.
func password(cmd *cobra.Command) (string, error) {
	if !passwordStdin {
		return userPassword, nil
	}

	if userPassword != "" {
		return "", ErrPasswordSources
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		plaintext, err := password(cmd)
		if err != nil {
			return err
		}

		return withDaemon(func(d *daemon.Daemon) error {
			u := &models.User{Name: userName, Email: userEmail, Password: plaintext}
			if err := d.Users.Create(cmd.Context(), u); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s>\n", u.ID, u.Email)

			return err
		})
	},
}

var userAuthenticateCmd = &cobra.Command{
	Use:   "authenticate",
	Short: "Check a user's password",
	RunE: func(cmd *cobra.Command, _ []string) error {
		plaintext, err := password(cmd)
		if err != nil {
			return err
		}

		return withDaemon(func(d *daemon.Daemon) error {
			u, err := d.Users.Authenticate(cmd.Context(), userEmail, plaintext)
			if err != nil {
				return err
			}

			if u == nil {
				return ErrAuthenticationFailed
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "authenticated user %d <%s>\n", u.ID, u.Email)

			return err
		})
	},
}

var userRotateTokenCmd = &cobra.Command{
	Use:   "rotate-token",
	Short: "Issue a new token for a user and print it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDaemon(func(d *daemon.Daemon) error {
			u, err := d.Users.GetByEmail(cmd.Context(), userEmail)
			if err != nil {
				return err
			}

			rotate := d.Users.RotateToken
			if accessToken {
				rotate = d.Users.RotateAccessToken
			}

			value, err := rotate(cmd.Context(), u.ID)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)

			return err
		})
	},
}

func init() { //nolint: gochecknoinits
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "initial password")
	userCreateCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the initial password from stdin")

	userAuthenticateCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userAuthenticateCmd.Flags().StringVar(&userPassword, "password", "", "password to check")
	userAuthenticateCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password to check from stdin")

	userRotateTokenCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userRotateTokenCmd.Flags().BoolVar(&accessToken, "access", false, "rotate the API access token instead of the reset token")

	for _, c := range []*cobra.Command{userCreateCmd, userAuthenticateCmd, userRotateTokenCmd} {
		_ = c.MarkFlagRequired("email")
		userCmd.AddCommand(c)
	}

	rootCmd.AddCommand(userCmd)
}
