// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

// New initializes and returns a bun-backed Store for the given dbType and
// dsn. The package keeps no global handle; callers hand the Store to the
// vault service and pass it around explicitly.
func New(dbType, dsn string) (Store, error) {
	return NewStoreFromDSN(dbType, dsn)
}
