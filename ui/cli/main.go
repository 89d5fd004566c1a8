// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for ConfVault using the Cobra
// library. It defines the root command, its persistent flags and the service
// wiring that every subcommand relies on.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/toeirei/confvault/internal/config"
	"github.com/toeirei/confvault/internal/crypto"
	"github.com/toeirei/confvault/internal/db"
	"github.com/toeirei/confvault/internal/i18n"
	"github.com/toeirei/confvault/internal/logging"
	"github.com/toeirei/confvault/internal/security"
	"github.com/toeirei/confvault/internal/vault"
)

var version = "dev"   // set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var cfgFile string
var verbose bool
var showVersionFlag bool

var appConfig config.Config

// app is the wired vault service. It is built once in setupDefaultServices
// and shared by every subcommand in this process.
var app *vault.Service

// setupDefaultServices loads configuration, validates the deployment
// contract and wires the vault service. It runs as PersistentPreRunE for
// every subcommand that touches the vault.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := map[string]any{
		"database.type": "sqlite",
		"database.dsn":  "./confvault.db",
		"language":      "en",
	}

	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, optionalConfigPath)
	if errors.Is(err, config.ErrNoConfigFile) {
		// First run, or the config file was deleted. Persist the defaults so
		// subsequent runs have a file to inspect.
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			log.Warnf("could not write default config file: %v", writeErr)
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if appConfig.Database.Type == "" {
		appConfig.Database.Type = defaults["database.type"].(string)
	}
	if appConfig.Database.Dsn == "" {
		appConfig.Database.Dsn = defaults["database.dsn"].(string)
	}
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}

	i18n.Init(appConfig.Language)

	// The key is carried as a Secret from here on; a raw value can never
	// reach the log, and only the vault constructor unwraps it.
	key := security.FromString(appConfig.EncryptionKey)
	logging.Debugf("config loaded: db=%s dsn=%s key=%s",
		appConfig.Database.Type, appConfig.Database.Dsn, key)

	// The deployment contract is checked before anything touches storage:
	// a vault without key material must not start.
	if err := appConfig.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingKey) {
			return errors.New(i18n.T("config.error_missing_key"))
		}
		if errors.Is(err, config.ErrMissingDSN) {
			return errors.New(i18n.T("config.error_missing_dsn"))
		}
		return err
	}

	store, err := db.New(appConfig.Database.Type, appConfig.Database.Dsn)
	if err != nil {
		return errors.New(i18n.T("config.error_init_db", err))
	}
	v, err := crypto.New(key.Reveal())
	if err != nil {
		return err
	}
	app = vault.New(store, v)
	if err := app.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("failed to initialize vault service: %w", err)
	}
	return nil
}

// Execute runs the CLI entrypoint. The main package calls this function and
// handles process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

func applyDefaultFlags(cmd *cobra.Command) {
	// NewRootCmd may be called multiple times in tests with shared
	// package-level subcommands; pflag panics on duplicate definitions.
	if cmd.Flags().Lookup("database.type") == nil {
		cmd.Flags().String("database.type", "sqlite", "Database type (sqlite, postgres, mysql)")
	}
	if cmd.Flags().Lookup("database.dsn") == nil {
		cmd.Flags().String("database.dsn", "./confvault.db", "Database connection string (DSN)")
	}
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only honor the flag when the user explicitly set it.
	if cmd.Flags().Changed("config") {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, fmt.Errorf("could not read --config flag: %w", err)
		}
		if path == "" {
			return nil, nil
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		return &path, nil
	}
	return nil, nil
}

// NewRootCmd creates and configures a new root cobra command. Tests use this
// to build fresh, isolated command trees.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confvault",
		Short: "ConfVault is a configuration and credential vault.",
		Long: `ConfVault keeps administrator identities, external database connection
profiles, object-storage provider profiles and typed application settings
in one place, with every secret encrypted at rest. Exactly one connection
profile and one storage provider can be active at a time; consumers only
ever ask for "the active one".`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Println(compositeVersion())
				os.Exit(0)
			}
			if verbose {
				logging.SetDebug(true)
				db.SetDebug(true)
			}
			return setupDefaultServices(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = compositeVersion()

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output (sets -v for DB logs)")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `Output language ("en", "de")`)
	applyDefaultFlags(cmd)

	cmd.AddCommand(
		newConnectionCmd(),
		newProviderCmd(),
		newSettingCmd(),
		newAdminCmd(),
		healthCmd,
		dbMaintainCmd,
		versionCmd,
	)

	return cmd
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If info is nil, it reads build info from the
// runtime. Separated out to keep it unit-testable.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := version
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	var ok bool
	if info == nil {
		if infoLocal, found := debug.ReadBuildInfo(); found {
			info = infoLocal
			ok = true
		}
	} else {
		ok = true
	}

	if ok && info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/toeirei/confvault" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}

// versionCmd prints detailed build information, one field per line, so CI
// can grep for individual values.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	// Version output must not require a working config or database.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		v, c, d := resolveBuildVersion(nil)
		fmt.Printf("version: %s\n", v)
		fmt.Printf("commit: %s\n", c)
		if d != "" {
			fmt.Printf("built: %s\n", d)
		}
	},
}

// healthCmd probes storage reachability and the encryption self-test.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage reachability and encryption round trip",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Health(cmd.Context()); err != nil {
			fmt.Println(i18n.T("health.db_fail", err))
			return err
		}
		fmt.Println(i18n.T("health.db_ok"))
		fmt.Println(i18n.T("health.crypto_ok"))
		return nil
	},
}

// dbMaintainCmd runs engine-specific maintenance against the configured DB.
var dbMaintainCmd = &cobra.Command{
	Use:   "db-maintain",
	Short: "Run database maintenance (VACUUM/OPTIMIZE) for the configured DB",
	Long:  `Runs engine-specific maintenance tasks (VACUUM, OPTIMIZE TABLE, PRAGMA optimize).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.RunDBMaintenance(appConfig.Database.Type, appConfig.Database.Dsn); err != nil {
			fmt.Println(i18n.T("maintain.fail", err))
			return err
		}
		fmt.Println(i18n.T("maintain.success"))
		return nil
	},
}
