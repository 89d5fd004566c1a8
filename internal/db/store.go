// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/confvault/internal/model"
)

// Store defines the interface for all database operations in ConfVault.
// This allows for multiple database backends to be implemented. Secrets
// cross this boundary as ciphertext only; encryption and decryption live in
// the vault layer above.
type Store interface {
	// Connection profile methods
	ListConnections(ctx context.Context) ([]model.DatabaseConnectionProfile, error)
	GetConnection(ctx context.Context, id int) (*model.DatabaseConnectionProfile, error)
	AddConnection(ctx context.Context, p model.DatabaseConnectionProfile) (int, error)
	UpdateConnection(ctx context.Context, id int, patch model.ConnectionUpdate) error
	DeleteConnection(ctx context.Context, id int) error
	SetActiveConnection(ctx context.Context, id int) error
	GetActiveConnection(ctx context.Context) (*model.DatabaseConnectionProfile, error)

	// Storage provider methods
	ListStorageProviders(ctx context.Context) ([]model.StorageProviderProfile, error)
	AddStorageProvider(ctx context.Context, p model.StorageProviderProfile) (int, error)
	DeleteStorageProvider(ctx context.Context, id int) error
	SetActiveStorageProvider(ctx context.Context, id int) error
	GetActiveStorageProvider(ctx context.Context) (*model.StorageProviderProfile, error)

	// Admin identity methods
	GetAdminByUsername(ctx context.Context, username string) (*model.AdminIdentity, error)
	EnsureAdmin(ctx context.Context, username, email, passwordHash, role string) error
	UpdateAdminLastLogin(ctx context.Context, id int) error
	UpdateAdminPassword(ctx context.Context, username, passwordHash string) error

	// Config entry methods
	GetConfigEntry(ctx context.Context, key string) (*model.ConfigEntry, error)
	GetAllConfigEntries(ctx context.Context) ([]model.ConfigEntry, error)
	GetPublicConfigEntries(ctx context.Context) ([]model.ConfigEntry, error)
	SetConfigEntry(ctx context.Context, e model.ConfigEntry) error

	// Ping probes storage liveness.
	Ping(ctx context.Context) error
}
