// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toeirei/confvault/internal/db"
	"github.com/toeirei/confvault/internal/i18n"
	"github.com/toeirei/confvault/internal/vault"
)

// newProviderCmd builds the `provider` command group for managing
// object-storage provider profiles.
func newProviderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provider",
		Short: "Manage object-storage provider profiles",
	}

	var (
		name       string
		kind       string
		configFile string
		configVals []string
	)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new storage provider profile",
		Long: `Registers an object-storage provider profile. The configuration is taken
from --config-file (a JSON document, '-' for stdin) or from repeated
--set key=value pairs, encrypted as a whole and stored as one blob.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := map[string]any{}
			if configFile != "" {
				var raw []byte
				var err error
				if configFile == "-" {
					raw, err = io.ReadAll(os.Stdin)
				} else {
					raw, err = os.ReadFile(configFile)
				}
				if err != nil {
					return fmt.Errorf("could not read provider config: %w", err)
				}
				if err := json.Unmarshal(raw, &cfg); err != nil {
					return fmt.Errorf("provider config is not valid JSON: %w", err)
				}
			}
			for _, kv := range configVals {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set expects key=value, got %q", kv)
				}
				cfg[k] = v
			}
			id, err := app.Providers.Create(cmd.Context(), name, kind, cfg)
			if err != nil {
				return err
			}
			fmt.Println(i18n.T("provider.added", name, id))
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Profile name")
	addCmd.Flags().StringVar(&kind, "provider", "", "Provider kind (e.g. s3, webdav, local)")
	addCmd.Flags().StringVar(&configFile, "config-file", "", "JSON file with the provider configuration ('-' for stdin)")
	addCmd.Flags().StringArrayVar(&configVals, "set", nil, "Set one configuration key (key=value, repeatable)")

	var reveal bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List storage provider profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := vault.MaskSecrets
			if reveal {
				mode = vault.RevealSecrets
			}
			profiles, err := app.Providers.List(cmd.Context(), mode)
			if err != nil {
				return err
			}
			for _, p := range profiles {
				marker := " "
				if p.IsActive {
					marker = "*"
				}
				fmt.Printf("%s %3d  %-20s %-10s %s\n", marker, p.ID, p.Name, p.Provider, p.Config)
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&reveal, "reveal", false, "Show decrypted configuration instead of masks")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a storage provider profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			if err := app.Providers.Delete(cmd.Context(), id); err != nil {
				if errors.Is(err, db.ErrActiveConnectionDelete) {
					return errors.New(i18n.T("connection.error_active_delete", id))
				}
				if errors.Is(err, db.ErrNotFound) {
					return errors.New(i18n.T("provider.error_not_found", id))
				}
				return err
			}
			fmt.Println(i18n.T("provider.removed", id))
			return nil
		},
	}

	activateCmd := &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a provider the single active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			if err := app.Providers.SetActive(cmd.Context(), id); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return errors.New(i18n.T("provider.error_not_found", id))
				}
				return err
			}
			fmt.Println(i18n.T("provider.activated", id))
			return nil
		},
	}

	showActiveCmd := &cobra.Command{
		Use:   "show-active",
		Short: "Show the active provider with its decrypted configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := app.Providers.GetActive(cmd.Context())
			if err != nil {
				if errors.Is(err, vault.ErrConfigParse) {
					return errors.New(i18n.T("provider.error_config_parse", err))
				}
				return err
			}
			if active == nil {
				fmt.Println(i18n.T("provider.none_active"))
				return nil
			}
			pretty, err := json.MarshalIndent(active.Config, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("%d  %s  (%s)\n%s\n", active.Profile.ID, active.Profile.Name, active.Profile.Provider, pretty)
			return nil
		},
	}

	cmd.AddCommand(addCmd, listCmd, removeCmd, activateCmd, showActiveCmd)
	return cmd
}
