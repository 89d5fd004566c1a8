// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"fmt"

	"github.com/toeirei/confvault/internal/logging"
	"github.com/toeirei/confvault/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// AdminAuthenticator verifies administrator credentials against stored
// bcrypt hashes. Unknown username and wrong password are deliberately
// indistinguishable to the caller: both return (nil, nil).
type AdminAuthenticator struct {
	svc *Service
}

// dummyHash is compared against when the username does not exist, so the
// absent-user path stays in the same timing class as a failed bcrypt check.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Verify checks username/password and returns the minimal public identity on
// success, stamping last-login. Storage errors are returned as errors; bad
// credentials are a (nil, nil) result, not an error.
func (a *AdminAuthenticator) Verify(ctx context.Context, username, password string) (*model.AdminIdentity, error) {
	if err := a.svc.ready(); err != nil {
		return nil, err
	}
	identity, err := a.svc.store.GetAdminByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up administrator: %w", err)
	}
	if identity == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	if err := a.svc.store.UpdateAdminLastLogin(ctx, identity.ID); err != nil {
		// Login itself succeeded; a failed stamp is logged, not fatal.
		logging.Warnf("vault: failed to update last login for %s: %v", username, err)
	}
	return &model.AdminIdentity{
		ID:       identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Role:     identity.Role,
		IsActive: identity.IsActive,
	}, nil
}

// SetPassword replaces the stored hash for username.
func (a *AdminAuthenticator) SetPassword(ctx context.Context, username, newPassword string) error {
	if err := a.svc.ready(); err != nil {
		return err
	}
	if newPassword == "" {
		return fmt.Errorf("%w: password", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return a.svc.store.UpdateAdminPassword(ctx, username, string(hash))
}
