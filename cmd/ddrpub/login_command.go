package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the DDR Publication service",
		RunE: func(cmd *cobra.Command, args []string) error {
			user := strings.TrimSpace(username)
			if user == "" {
				user = strings.TrimSpace(os.Getenv("DDR_USERNAME"))
			}
			if user == "" {
				return fmt.Errorf("no username: pass --username or set DDR_USERNAME")
			}
			pass := password
			if pass == "" {
				pass = os.Getenv("DDR_PASSWORD")
			}
			if pass == "" {
				return fmt.Errorf("no password: pass --password or set DDR_PASSWORD")
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			cred, err := client.Login(cmd.Context(), user, pass)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s\n", user)
			fmt.Fprintf(out, "Token valid for %d seconds (refresh for %d)\n", cred.ExpiresIn, cred.RefreshExpiresIn)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "DDR account user name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "DDR account password (prefer DDR_PASSWORD)")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored DDR access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.session()
			if err != nil {
				return err
			}
			if err := session.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored token discarded")
			return nil
		},
	}
}
