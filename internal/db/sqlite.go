// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for ConfVault.
// This file contains the SQLite implementation of the database store.
package db // import "github.com/toeirei/confvault/internal/db"

import (
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SqliteStore is the SQLite implementation of the Store interface. All
// operations are provided by the embedded bunStore; SQLite needs no
// engine-specific overrides beyond the single-connection pool handling for
// in-memory databases applied in NewStoreFromDSN.
type SqliteStore struct {
	bunStore
}
