// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package config loads the ConfVault configuration from files, environment
// variables and CLI flags, in ascending precedence. It also carries the
// fail-fast startup validation: without an encryption key and a database
// DSN the process must not start.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrMissingKey is the fatal startup error for absent encryption key
// material. A fabricated fallback key would silently break decryption of
// previously stored secrets after a restart.
var ErrMissingKey = errors.New("encryption key is not configured")

// ErrMissingDSN is the fatal startup error for an absent storage target.
var ErrMissingDSN = errors.New("database DSN is not configured")

// ErrNoConfigFile reports that no config file was found in any search path.
// The returned Config is still fully populated from defaults, environment
// and flags; callers may persist it to create the initial file.
var ErrNoConfigFile = errors.New("no config file found")

// Config is the root configuration for ConfVault.
type Config struct {
	Database struct {
		Type string `mapstructure:"type" yaml:"type"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`
	// EncryptionKey is the raw symmetric key material for the credential
	// vault. Normally supplied via CONFVAULT_ENCRYPTION_KEY rather than the
	// config file.
	EncryptionKey string `mapstructure:"encryption_key" yaml:"encryption_key,omitempty"`
	Language      string `mapstructure:"language" yaml:"language"`
}

// Validate enforces the startup requirements from the deployment contract:
// both the encryption key and the storage DSN must be present before any
// vault operation runs.
func (c Config) Validate() error {
	if c.EncryptionKey == "" {
		return ErrMissingKey
	}
	if c.Database.Dsn == "" {
		return ErrMissingDSN
	}
	return nil
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		// System-wide configuration paths
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "ConfVault")
		default: // Linux, macOS, etc.
			configDir = "/etc/confvault"
		}
	} else {
		// User-specific configuration paths
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "confvault")
	}

	return filepath.Join(configDir, "confvault.yaml"), nil
}

// LoadConfig assembles a configuration value of type T from defaults, the
// discovered config file, environment variables (CONFVAULT_ prefix) and the
// command's flags, in that order of precedence.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	// 1. Set defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Set up file search paths
	v.SetConfigName("confvault")
	v.SetConfigType("yaml")

	// 3. An explicit --config path has the highest precedence for
	// file-based configuration.
	if additionalConfigFilePath != nil {
		v.SetConfigFile(*additionalConfigFilePath)
	}

	// 4. Standard config locations
	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // Look for confvault.yaml in current dir

	// 5. Read in the primary config file. A missing file is reported as
	// ErrNoConfigFile after the rest of the sources are merged, so the
	// caller still receives a usable configuration.
	fileMissing := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
		fileMissing = true
	}

	// 6. Read from environment variables
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("confvault")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 7. CLI flags
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	if fileMissing {
		return c, ErrNoConfigFile
	}
	return c, nil
}

// WriteConfigFile persists c to the user or system config path. Secrets may
// end up in this file, so it is written 0600.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}

	return nil
}
