// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for ConfVault.
// This file contains the PostgreSQL implementation of the database store.
package db

import (
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver, registered as "pgx"
)

// PostgresStore is the PostgreSQL implementation of the Store interface.
// Bun's pgdialect covers placeholder and RETURNING differences, so the
// embedded bunStore carries all operations.
type PostgresStore struct {
	bunStore
}
