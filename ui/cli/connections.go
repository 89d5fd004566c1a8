// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/toeirei/confvault/internal/db"
	"github.com/toeirei/confvault/internal/i18n"
	"github.com/toeirei/confvault/internal/model"
	"github.com/toeirei/confvault/internal/vault"
)

// readSecret prompts for a secret on the terminal without echo. When stdin
// is not a terminal (pipes, CI), it returns empty and the caller decides.
func readSecret(prompt string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", nil
	}
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func parseIDArg(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%q is not a numeric id", arg)
	}
	return id, nil
}

// newConnectionCmd builds the `connection` command group for managing
// external database connection profiles.
func newConnectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connection",
		Short: "Manage external database connection profiles",
	}

	var (
		name     string
		engine   string
		host     string
		port     int
		database string
		username string
		password string
		sslMode  string
	)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new connection profile",
		Long: `Registers a new external database connection profile. The password is
encrypted before it reaches storage. New profiles start inactive; use
'connection activate' to switch to them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw := password
			if pw == "" {
				var err error
				pw, err = readSecret(i18n.T("connection.password_prompt"))
				if err != nil {
					return errors.New(i18n.T("connection.error_read_password", err))
				}
			}
			id, err := app.Connections.Create(cmd.Context(), model.DatabaseConnectionProfile{
				Name:     name,
				Engine:   engine,
				Host:     host,
				Port:     port,
				Database: database,
				Username: username,
				Password: pw,
				SSLMode:  sslMode,
			})
			if err != nil {
				return err
			}
			fmt.Println(i18n.T("connection.added", name, id))
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Profile name")
	addCmd.Flags().StringVar(&engine, "engine", "", "Database engine (default postgres)")
	addCmd.Flags().StringVar(&host, "host", "", "Database host")
	addCmd.Flags().IntVar(&port, "port", 0, "Database port (default 5432)")
	addCmd.Flags().StringVar(&database, "database", "", "Database name")
	addCmd.Flags().StringVar(&username, "username", "", "Database user")
	addCmd.Flags().StringVarP(&password, "password", "p", "", "Database password (prompted when omitted)")
	addCmd.Flags().StringVar(&sslMode, "sslmode", "", "SSL mode (default disable)")

	var reveal bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List connection profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := vault.MaskSecrets
			if reveal {
				mode = vault.RevealSecrets
			}
			profiles, err := app.Connections.List(cmd.Context(), mode)
			if err != nil {
				return err
			}
			for _, p := range profiles {
				marker := " "
				if p.IsActive {
					marker = "*"
				}
				fmt.Printf("%s %3d  %-20s %s (user %s, password %s)\n", marker, p.ID, p.Name, p.String(), p.Username, p.Password)
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&reveal, "reveal", false, "Show decrypted passwords instead of masks")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a connection profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			if err := app.Connections.Delete(cmd.Context(), id); err != nil {
				if errors.Is(err, db.ErrActiveConnectionDelete) {
					return errors.New(i18n.T("connection.error_active_delete", id))
				}
				if errors.Is(err, db.ErrNotFound) {
					return errors.New(i18n.T("connection.error_not_found", id))
				}
				return err
			}
			fmt.Println(i18n.T("connection.removed", id))
			return nil
		},
	}

	activateCmd := &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a profile the single active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			if err := app.Connections.SetActive(cmd.Context(), id); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return errors.New(i18n.T("connection.error_not_found", id))
				}
				return err
			}
			fmt.Println(i18n.T("connection.activated", id))
			return nil
		},
	}

	var showDSN bool
	showActiveCmd := &cobra.Command{
		Use:   "show-active",
		Short: "Show the active connection profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showDSN {
				full, err := app.Connections.GetActiveFull(cmd.Context())
				if err != nil {
					return err
				}
				if full == nil {
					fmt.Println(i18n.T("connection.none_active"))
					return nil
				}
				fmt.Println(full.DSN)
				return nil
			}
			p, err := app.Connections.GetActive(cmd.Context())
			if err != nil {
				return err
			}
			if p == nil {
				fmt.Println(i18n.T("connection.none_active"))
				return nil
			}
			fmt.Printf("%d  %s  %s (user %s)\n", p.ID, p.Name, p.String(), p.Username)
			return nil
		},
	}
	showActiveCmd.Flags().BoolVar(&showDSN, "dsn", false, "Print the driver DSN including the decrypted password")

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of an existing profile",
		Long: `Updates only the fields whose flags are given; everything else is left
untouched. A new password is re-encrypted before storage.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			var patch model.ConnectionUpdate
			flagTo := func(flag string, target **string, value *string) {
				if cmd.Flags().Changed(flag) {
					*target = value
				}
			}
			flagTo("name", &patch.Name, &name)
			flagTo("engine", &patch.Engine, &engine)
			flagTo("host", &patch.Host, &host)
			flagTo("database", &patch.Database, &database)
			flagTo("username", &patch.Username, &username)
			flagTo("password", &patch.Password, &password)
			flagTo("sslmode", &patch.SSLMode, &sslMode)
			if cmd.Flags().Changed("port") {
				patch.Port = &port
			}
			if err := app.Connections.Update(cmd.Context(), id, patch); err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return errors.New(i18n.T("connection.error_not_found", id))
				}
				return err
			}
			log.Infof("connection profile %d updated", id)
			return nil
		},
	}
	updateCmd.Flags().StringVar(&name, "name", "", "Profile name")
	updateCmd.Flags().StringVar(&engine, "engine", "", "Database engine")
	updateCmd.Flags().StringVar(&host, "host", "", "Database host")
	updateCmd.Flags().IntVar(&port, "port", 0, "Database port")
	updateCmd.Flags().StringVar(&database, "database", "", "Database name")
	updateCmd.Flags().StringVar(&username, "username", "", "Database user")
	updateCmd.Flags().StringVarP(&password, "password", "p", "", "Database password")
	updateCmd.Flags().StringVar(&sslMode, "sslmode", "", "SSL mode")

	cmd.AddCommand(addCmd, listCmd, removeCmd, activateCmd, showActiveCmd, updateCmd)
	return cmd
}
