// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures for ConfVault. These are
// plain domain types, independent of any database or transport concerns.
package model

import (
	"fmt"
	"time"
)

// AdminIdentity represents an administrator account. The password hash is a
// bcrypt digest and never leaves the storage layer; Verify results carry an
// identity with the hash cleared.
type AdminIdentity struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// String returns the username (role) representation for logs.
func (a AdminIdentity) String() string {
	return fmt.Sprintf("%s (%s)", a.Username, a.Role)
}

// DatabaseConnectionProfile describes one external database target. Password
// holds ciphertext at rest; registry operations decrypt it on demand or mask
// it, depending on the caller-selected mode.
type DatabaseConnectionProfile struct {
	ID        int
	Name      string
	Engine    string
	Host      string
	Port      int
	Database  string
	Username  string
	Password  string
	SSLMode   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// String returns the engine://host:port/database representation.
func (p DatabaseConnectionProfile) String() string {
	return fmt.Sprintf("%s://%s:%d/%s", p.Engine, p.Host, p.Port, p.Database)
}

// ConnectionUpdate is a partial-field patch for a connection profile. Nil
// fields are left untouched. Password, when set, is re-encrypted by the
// registry before it reaches storage.
type ConnectionUpdate struct {
	Name     *string
	Engine   *string
	Host     *string
	Port     *int
	Database *string
	Username *string
	Password *string
	SSLMode  *string
}

// Empty reports whether the patch carries no fields at all.
func (u ConnectionUpdate) Empty() bool {
	return u.Name == nil && u.Engine == nil && u.Host == nil && u.Port == nil &&
		u.Database == nil && u.Username == nil && u.Password == nil && u.SSLMode == nil
}

// StorageProviderProfile describes one object-storage provider. Config holds
// an encrypted JSON blob at rest; GetActive decrypts and parses it.
type StorageProviderProfile struct {
	ID        int
	Name      string
	Provider  string
	Config    string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValueType tags the value space of a config entry. It is decided at write
// time and advisory at read time.
type ValueType string

const (
	ValueString  ValueType = "string"
	ValueNumber  ValueType = "number"
	ValueBoolean ValueType = "boolean"
	ValueJSON    ValueType = "json"
)

// Valid reports whether t is one of the known value types.
func (t ValueType) Valid() bool {
	switch t {
	case ValueString, ValueNumber, ValueBoolean, ValueJSON:
		return true
	}
	return false
}

// ConfigEntry is a typed key/value setting. Public entries form the subset
// exposed to unauthenticated readers.
type ConfigEntry struct {
	Key         string
	Value       string
	Type        ValueType
	Category    string
	Description string
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
