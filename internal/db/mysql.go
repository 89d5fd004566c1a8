// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for ConfVault.
// This file contains the MySQL implementation of the database store.
package db

import (
	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLStore is the MySQL implementation of the Store interface. MySQL has
// no RETURNING clause; Bun falls back to LAST_INSERT_ID() for autoincrement
// primary keys, so the embedded bunStore works unchanged.
type MySQLStore struct {
	bunStore
}
