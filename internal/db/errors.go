// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db contains shared database errors and helpers.
package db

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when attempting to insert a record that already exists.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotFound is returned by id-scoped operations whose statement affected
// zero rows. Detected via affected-row counts rather than a pre-check so
// concurrent deletes cannot slip through the gap.
var ErrNotFound = errors.New("record not found")

// ErrActiveConnectionDelete is returned when a caller tries to delete the
// currently active profile. Deleting it would leave the system without a
// usable connection; the caller must activate another profile first.
var ErrActiveConnectionDelete = errors.New("profile is active and cannot be deleted")

// ErrSchemaIntegrity is returned when a required relation is still missing
// after bootstrap. This is fatal: the process cannot safely continue.
var ErrSchemaIntegrity = errors.New("schema integrity check failed")

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors (like ErrDuplicate). This is a
// conservative, string-based mapping to avoid importing SQL driver packages
// into this package file.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	return err
}
