// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/toeirei/confvault/internal/model"
)

// StorageProviderRegistry manages object-storage provider profiles. It
// mirrors the connection registry: encrypted configuration at rest, one
// active profile, clear-then-set activation, and the same active-delete
// guard.
type StorageProviderRegistry struct {
	svc *Service
}

// ActiveProvider is the decrypted view of the active provider profile.
type ActiveProvider struct {
	Profile model.StorageProviderProfile
	Config  map[string]any
}

// Create marshals and encrypts the provider configuration and registers the
// profile (inactive).
func (r *StorageProviderRegistry) Create(ctx context.Context, name, provider string, config map[string]any) (int, error) {
	if err := r.svc.ready(); err != nil {
		return 0, err
	}
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if provider == "" {
		missing = append(missing, "provider")
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if config == nil {
		config = map[string]any{}
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal provider config: %w", err)
	}
	ciphertext, err := r.svc.vault.Encrypt(string(raw))
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt provider config: %w", err)
	}
	id, err := r.svc.store.AddStorageProvider(ctx, model.StorageProviderProfile{
		Name:     name,
		Provider: provider,
		Config:   ciphertext,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to register storage provider: %w", err)
	}
	return id, nil
}

// List returns all provider profiles ordered by name. Config blobs are
// masked or decrypted per mode; the decrypted form is the JSON text.
func (r *StorageProviderRegistry) List(ctx context.Context, mode ListMode) ([]model.StorageProviderProfile, error) {
	if err := r.svc.ready(); err != nil {
		return nil, err
	}
	profiles, err := r.svc.store.ListStorageProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage providers: %w", err)
	}
	for i := range profiles {
		if mode == RevealSecrets {
			plain, err := r.svc.vault.Decrypt(profiles[i].Config)
			if err != nil {
				return nil, fmt.Errorf("provider %d: %w", profiles[i].ID, err)
			}
			profiles[i].Config = plain
		} else {
			profiles[i].Config = maskedSecret
		}
	}
	return profiles, nil
}

// Delete removes a provider profile, refusing to delete the active one.
func (r *StorageProviderRegistry) Delete(ctx context.Context, id int) error {
	if err := r.svc.ready(); err != nil {
		return err
	}
	return r.svc.store.DeleteStorageProvider(ctx, id)
}

// SetActive atomically makes id the only active provider.
func (r *StorageProviderRegistry) SetActive(ctx context.Context, id int) error {
	if err := r.svc.ready(); err != nil {
		return err
	}
	return r.svc.store.SetActiveStorageProvider(ctx, id)
}

// GetActive returns the active provider with its configuration decrypted and
// parsed, or (nil, nil) when none is active. A decrypted blob that is not
// valid JSON surfaces as ErrConfigParse.
func (r *StorageProviderRegistry) GetActive(ctx context.Context) (*ActiveProvider, error) {
	if err := r.svc.ready(); err != nil {
		return nil, err
	}
	p, err := r.svc.store.GetActiveStorageProvider(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	plain, err := r.svc.vault.Decrypt(p.Config)
	if err != nil {
		return nil, fmt.Errorf("active provider %d: %w", p.ID, err)
	}
	var cfg map[string]any
	if err := json.Unmarshal([]byte(plain), &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	p.Config = plain
	return &ActiveProvider{Profile: *p, Config: cfg}, nil
}
