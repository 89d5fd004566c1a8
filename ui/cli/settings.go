// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toeirei/confvault/internal/i18n"
	"github.com/toeirei/confvault/internal/model"
)

// newSettingCmd builds the `setting` command group for typed key/value
// application settings.
func newSettingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setting",
		Short: "Manage typed application settings",
	}

	var (
		valueType   string
		category    string
		description string
		public      bool
	)

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Create or overwrite a setting",
		Long: `Creates or overwrites a setting. The value is checked against the declared
type (string, number, boolean, json) at write time.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := model.ConfigEntry{
				Key:         args[0],
				Value:       args[1],
				Type:        model.ValueType(valueType),
				Category:    category,
				Description: description,
				IsPublic:    public,
			}
			if err := app.Settings.Set(cmd.Context(), entry); err != nil {
				return err
			}
			fmt.Println(i18n.T("setting.set", args[0]))
			return nil
		},
	}
	setCmd.Flags().StringVarP(&valueType, "type", "t", "", "Value type: string, number, boolean, json (default string)")
	setCmd.Flags().StringVarP(&category, "category", "c", "", "Setting category (default general)")
	setCmd.Flags().StringVar(&description, "description", "", "Human-readable description")
	setCmd.Flags().BoolVar(&public, "public", false, "Expose the setting to unauthenticated readers")

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.Settings.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if entry == nil {
				fmt.Println(i18n.T("setting.not_found", args[0]))
				return nil
			}
			fmt.Println(entry.Value)
			return nil
		},
	}

	var publicOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all settings, grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []model.ConfigEntry
			var err error
			if publicOnly {
				entries, err = app.Settings.GetPublic(cmd.Context())
			} else {
				entries, err = app.Settings.GetAll(cmd.Context())
			}
			if err != nil {
				return err
			}
			lastCategory := ""
			for _, e := range entries {
				if e.Category != lastCategory {
					fmt.Printf("[%s]\n", e.Category)
					lastCategory = e.Category
				}
				visibility := ""
				if e.IsPublic {
					visibility = " (public)"
				}
				fmt.Printf("  %-30s = %s  [%s]%s\n", e.Key, e.Value, e.Type, visibility)
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&publicOnly, "public", false, "Only list settings exposed to unauthenticated readers")

	cmd.AddCommand(setCmd, getCmd, listCmd)
	return cmd
}
