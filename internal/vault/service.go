// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package vault is the composition root of ConfVault. A single Service
// instance owns the storage handle and the credential vault and exposes the
// registries; it is constructed once at process start and passed to all
// callers explicitly.
package vault

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/toeirei/confvault/internal/crypto"
	"github.com/toeirei/confvault/internal/db"
	"github.com/toeirei/confvault/internal/logging"

	"golang.org/x/crypto/bcrypt"
)

// ErrNotInitialized is returned by every operation invoked before
// Initialize completes. This is always a caller bug, never retried.
var ErrNotInitialized = errors.New("vault service is not initialized")

// ErrConfigParse is returned when a decrypted storage-provider configuration
// is not well-formed JSON.
var ErrConfigParse = errors.New("provider configuration is not valid JSON")

// ErrValueType is returned when a config value does not fit its declared type.
var ErrValueType = errors.New("value does not match declared type")

// ErrEmptyUpdate is returned for a partial update that carries no fields.
var ErrEmptyUpdate = errors.New("update contains no fields")

// ErrValidation is returned when required profile fields are missing.
var ErrValidation = errors.New("missing required fields")

// Default administrator seeded at schema bootstrap. The password must be
// changed on first login; the CLI prints a reminder.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@localhost"
	DefaultAdminPassword = "changeme"
	DefaultAdminRole     = "admin"
)

// Service bundles the vault registries over one storage handle and one
// credential vault. All secret material entering storage passes through the
// vault; the Store only ever sees ciphertext.
type Service struct {
	store       db.Store
	vault       *crypto.Vault
	initialized atomic.Bool

	Connections *ConnectionRegistry
	Providers   *StorageProviderRegistry
	Auth        *AdminAuthenticator
	Settings    *ConfigStore
}

// New wires a Service from its two dependencies. Initialize must be called
// before any operation.
func New(store db.Store, vault *crypto.Vault) *Service {
	s := &Service{store: store, vault: vault}
	s.Connections = &ConnectionRegistry{svc: s}
	s.Providers = &StorageProviderRegistry{svc: s}
	s.Auth = &AdminAuthenticator{svc: s}
	s.Settings = &ConfigStore{svc: s}
	return s
}

// Initialize probes storage, seeds the default administrator (insert-if-
// absent by username) and marks the service ready. Safe to call once; the
// schema itself was already bootstrapped and verified when the Store was
// constructed.
func (s *Service) Initialize(ctx context.Context) error {
	if s.initialized.Load() {
		return nil
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("storage liveness probe failed: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default admin password: %w", err)
	}
	if err := s.store.EnsureAdmin(ctx, DefaultAdminUsername, DefaultAdminEmail, string(hash), DefaultAdminRole); err != nil {
		return fmt.Errorf("failed to seed default administrator: %w", err)
	}
	s.initialized.Store(true)
	logging.Debugf("vault: service initialized")
	return nil
}

// ready gates every operation on prior initialization.
func (s *Service) ready() error {
	if !s.initialized.Load() {
		return ErrNotInitialized
	}
	return nil
}

// Health reports storage reachability and runs the encrypt/decrypt
// self-test.
func (s *Service) Health(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("storage unreachable: %w", err)
	}
	if err := s.vault.SelfTest(); err != nil {
		return fmt.Errorf("encryption self-test failed: %w", err)
	}
	return nil
}
