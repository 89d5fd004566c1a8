// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for ConfVault using
// Cobra. It wires configuration and the vault service, and provides commands
// that delegate to the registries in internal/vault. CLI code should remain
// thin and keep business logic in the vault layer.
package cli
