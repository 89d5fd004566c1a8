// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/toeirei/confvault/internal/model"
)

// ListMode selects how secrets appear in listings. Masking is an explicit
// caller choice, never a default that could be forgotten.
type ListMode int

const (
	// MaskSecrets replaces every secret with a placeholder.
	MaskSecrets ListMode = iota
	// RevealSecrets decrypts secrets for privileged callers.
	RevealSecrets
)

// maskedSecret is what masked listings show instead of a password.
const maskedSecret = "********"

// ConnectionRegistry manages external database connection profiles. At most
// one profile is active at any observable instant; activation is a
// clear-then-set transition inside a single storage transaction.
type ConnectionRegistry struct {
	svc *Service
}

// List returns all profiles ordered by name, with passwords decrypted or
// masked per mode.
func (r *ConnectionRegistry) List(ctx context.Context, mode ListMode) ([]model.DatabaseConnectionProfile, error) {
	if err := r.svc.ready(); err != nil {
		return nil, err
	}
	profiles, err := r.svc.store.ListConnections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connection profiles: %w", err)
	}
	for i := range profiles {
		if mode == RevealSecrets {
			plain, err := r.svc.vault.Decrypt(profiles[i].Password)
			if err != nil {
				return nil, fmt.Errorf("profile %d: %w", profiles[i].ID, err)
			}
			profiles[i].Password = plain
		} else {
			profiles[i].Password = maskedSecret
		}
	}
	return profiles, nil
}

// Create validates the required fields, encrypts the password and registers
// the profile. New profiles are never active; activation is a separate,
// explicit step.
func (r *ConnectionRegistry) Create(ctx context.Context, p model.DatabaseConnectionProfile) (int, error) {
	if err := r.svc.ready(); err != nil {
		return 0, err
	}
	var missing []string
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.Host == "" {
		missing = append(missing, "host")
	}
	if p.Database == "" {
		missing = append(missing, "database")
	}
	if p.Username == "" {
		missing = append(missing, "username")
	}
	if p.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if p.Engine == "" {
		p.Engine = "postgres"
	}
	if p.Port == 0 {
		p.Port = 5432
	}
	if p.SSLMode == "" {
		p.SSLMode = "disable"
	}
	ciphertext, err := r.svc.vault.Encrypt(p.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt password: %w", err)
	}
	p.Password = ciphertext
	id, err := r.svc.store.AddConnection(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("failed to register connection profile: %w", err)
	}
	return id, nil
}

// Update applies a partial-field patch. Empty patches are rejected; a
// supplied password is re-encrypted before it reaches storage.
func (r *ConnectionRegistry) Update(ctx context.Context, id int, patch model.ConnectionUpdate) error {
	if err := r.svc.ready(); err != nil {
		return err
	}
	if patch.Empty() {
		return ErrEmptyUpdate
	}
	if patch.Password != nil {
		ciphertext, err := r.svc.vault.Encrypt(*patch.Password)
		if err != nil {
			return fmt.Errorf("failed to encrypt password: %w", err)
		}
		patch.Password = &ciphertext
	}
	return r.svc.store.UpdateConnection(ctx, id, patch)
}

// Delete removes a profile. The active profile cannot be deleted; callers
// must activate another profile first.
func (r *ConnectionRegistry) Delete(ctx context.Context, id int) error {
	if err := r.svc.ready(); err != nil {
		return err
	}
	return r.svc.store.DeleteConnection(ctx, id)
}

// SetActive atomically makes id the only active profile.
func (r *ConnectionRegistry) SetActive(ctx context.Context, id int) error {
	if err := r.svc.ready(); err != nil {
		return err
	}
	return r.svc.store.SetActiveConnection(ctx, id)
}

// GetActive returns the active profile with its password decrypted, or
// (nil, nil) when no profile is active. Fresh installs start in that state.
func (r *ConnectionRegistry) GetActive(ctx context.Context) (*model.DatabaseConnectionProfile, error) {
	if err := r.svc.ready(); err != nil {
		return nil, err
	}
	p, err := r.svc.store.GetActiveConnection(ctx)
	if err != nil || p == nil {
		return p, err
	}
	plain, err := r.svc.vault.Decrypt(p.Password)
	if err != nil {
		return nil, fmt.Errorf("active profile %d: %w", p.ID, err)
	}
	p.Password = plain
	return p, nil
}

// ActiveConnection is the full connection material for callers that open
// the connection themselves: the decrypted profile plus a ready-to-use
// driver DSN.
type ActiveConnection struct {
	Profile model.DatabaseConnectionProfile
	DSN     string
}

// GetActiveFull returns the active profile together with the rendered DSN,
// or (nil, nil) when no profile is active.
func (r *ConnectionRegistry) GetActiveFull(ctx context.Context) (*ActiveConnection, error) {
	p, err := r.GetActive(ctx)
	if err != nil || p == nil {
		return nil, err
	}
	return &ActiveConnection{Profile: *p, DSN: connectionDSN(*p)}, nil
}

// connectionDSN renders an engine-specific DSN from a decrypted profile.
func connectionDSN(p model.DatabaseConnectionProfile) string {
	switch p.Engine {
	case "mysql":
		cfg := mysql.NewConfig()
		cfg.User = p.Username
		cfg.Passwd = p.Password
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%d", p.Host, p.Port)
		cfg.DBName = p.Database
		return cfg.FormatDSN()
	case "sqlite":
		return p.Database
	default:
		u := url.URL{
			Scheme: p.Engine,
			User:   url.UserPassword(p.Username, p.Password),
			Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
			Path:   "/" + p.Database,
		}
		if p.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": []string{p.SSLMode}}.Encode()
		}
		return u.String()
	}
}
