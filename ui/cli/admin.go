// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toeirei/confvault/internal/db"
	"github.com/toeirei/confvault/internal/i18n"
	"github.com/toeirei/confvault/internal/vault"
)

// newAdminCmd builds the `admin` command group for administrator identities.
func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator identities",
	}

	var password string

	passwdCmd := &cobra.Command{
		Use:   "passwd [username]",
		Short: "Set an administrator's password",
		Long: `Sets a new password for the given administrator (default: the built-in
'admin' account). The password is prompted without echo unless --password
is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := vault.DefaultAdminUsername
			if len(args) > 0 {
				username = args[0]
			}
			pw := password
			if pw == "" {
				var err error
				pw, err = readSecret(i18n.T("admin.password_prompt", username))
				if err != nil {
					return err
				}
			}
			if pw == "" {
				return fmt.Errorf("password must not be empty")
			}
			if err := app.Auth.SetPassword(cmd.Context(), username, pw); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("no administrator named %q", username)
				}
				return err
			}
			fmt.Println(i18n.T("admin.password_updated", username))
			return nil
		},
	}
	passwdCmd.Flags().StringVarP(&password, "password", "p", "", "New password (prompted when omitted)")

	verifyCmd := &cobra.Command{
		Use:   "verify <username>",
		Short: "Check a username/password pair",
		Long: `Checks credentials against the stored identity. Exits non-zero when they
are rejected; the output never reveals whether the username exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw := password
			if pw == "" {
				var err error
				pw, err = readSecret(i18n.T("admin.verify_prompt", args[0]))
				if err != nil {
					return err
				}
			}
			identity, err := app.Auth.Verify(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			if identity == nil {
				cmd.SilenceUsage = true
				return errors.New(i18n.T("admin.verify_failed"))
			}
			fmt.Println(i18n.T("admin.verify_ok", identity.String()))
			return nil
		},
	}
	verifyCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")

	cmd.AddCommand(passwdCmd, verifyCmd)
	return cmd
}
