// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/toeirei/confvault/internal/model"
)

// ConfigStore manages generic typed settings. Values are persisted as text
// with a type tag decided at write time; readers coerce according to the
// tag.
type ConfigStore struct {
	svc *Service
}

// Get returns the entry for key, or (nil, nil) when it does not exist.
func (c *ConfigStore) Get(ctx context.Context, key string) (*model.ConfigEntry, error) {
	if err := c.svc.ready(); err != nil {
		return nil, err
	}
	return c.svc.store.GetConfigEntry(ctx, key)
}

// GetAll returns every setting ordered by category, then key.
func (c *ConfigStore) GetAll(ctx context.Context) ([]model.ConfigEntry, error) {
	if err := c.svc.ready(); err != nil {
		return nil, err
	}
	return c.svc.store.GetAllConfigEntries(ctx)
}

// GetPublic returns only the entries flagged public, the subset exposed to
// unauthenticated readers.
func (c *ConfigStore) GetPublic(ctx context.Context) ([]model.ConfigEntry, error) {
	if err := c.svc.ready(); err != nil {
		return nil, err
	}
	return c.svc.store.GetPublicConfigEntries(ctx)
}

// Set upserts a setting. The declared type is validated against the value at
// write time; on conflict with an existing key, value, type, category,
// description and visibility are all overwritten.
func (c *ConfigStore) Set(ctx context.Context, e model.ConfigEntry) error {
	if err := c.svc.ready(); err != nil {
		return err
	}
	if e.Key == "" {
		return fmt.Errorf("%w: key", ErrValidation)
	}
	if e.Type == "" {
		e.Type = model.ValueString
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrValueType, e.Type)
	}
	if err := checkValue(e.Type, e.Value); err != nil {
		return err
	}
	if e.Category == "" {
		e.Category = "general"
	}
	return c.svc.store.SetConfigEntry(ctx, e)
}

// checkValue enforces the declared value space at write time.
func checkValue(t model.ValueType, value string) error {
	switch t {
	case model.ValueNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrValueType, value)
		}
	case model.ValueBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrValueType, value)
		}
	case model.ValueJSON:
		if !json.Valid([]byte(value)) {
			return fmt.Errorf("%w: value is not valid JSON", ErrValueType)
		}
	}
	return nil
}
