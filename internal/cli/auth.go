package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/pkg/apierror"
)

func newLoginCmd(e *env) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if username == "" {
				if username, err = e.prompt(cmd, "Username: "); err != nil {
					return err
				}
			}
			password, err := e.promptPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			if username == "" || password == "" {
				return errors.New("username and password are required")
			}

			sess, err := e.client.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login failed: %s", apierror.UserMessage(err))
			}
			if err := e.store.Save(cmd.Context(), sess); err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Signed in as %s (%s)", sess.Username(), sess.Role())
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.store.Delete(cmd.Context(), ""); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := e.session(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", sess.Username(), sess.Role(), e.server)
			return nil
		},
	}
}
