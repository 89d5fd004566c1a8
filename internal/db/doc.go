// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db contains the data-access layer for ConfVault.
//
// The package exposes a single Store interface with three Bun-backed
// implementations (SQLite, PostgreSQL, MySQL). Construction goes through
// NewStoreFromDSN, which opens the pooled connection, probes liveness,
// applies the embedded migrations and verifies that all required relations
// exist before handing the store to callers.
//
// Secrets cross this layer as ciphertext only. Encryption, masking and the
// initialize-before-use gate live in the vault package above; this package
// is responsible for persistence, the activation transactions that keep the
// "at most one active profile" invariant, and mapping driver errors to the
// package sentinels (ErrNotFound, ErrDuplicate, ErrActiveConnectionDelete,
// ErrSchemaIntegrity).
//
// Testing notes
//   - Prefer db.New("sqlite", "file:test?mode=memory&cache=shared") in tests
//     that need real DB semantics and migrations.
//   - The higher-level vault registries can be tested against the same
//     in-memory store; no fakes are needed for the common paths.
package db
