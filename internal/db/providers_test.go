// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/toeirei/confvault/internal/model"
)

func addTestProvider(t *testing.T, s Store, name, kind string) int {
	t.Helper()
	id, err := s.AddStorageProvider(context.Background(), model.StorageProviderProfile{
		Name:     name,
		Provider: kind,
		Config:   "aaaa:bbbb:cccc",
	})
	if err != nil {
		t.Fatalf("AddStorageProvider(%s) failed: %v", name, err)
	}
	return id
}

func TestProviders_CreateAndList(t *testing.T) {
	s := newTestStore(t)
	addTestProvider(t, s, "eu-backups", "s3")
	addTestProvider(t, s, "archive", "webdav")

	profiles, err := s.ListStorageProviders(context.Background())
	if err != nil {
		t.Fatalf("ListStorageProviders failed: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(profiles))
	}
	if profiles[0].Name != "archive" || profiles[1].Name != "eu-backups" {
		t.Fatalf("expected name ordering, got %q, %q", profiles[0].Name, profiles[1].Name)
	}
	for _, p := range profiles {
		if p.IsActive {
			t.Fatalf("new provider %q must not be active", p.Name)
		}
		if p.Config != "aaaa:bbbb:cccc" {
			t.Fatalf("config blob round trip failed: %q", p.Config)
		}
	}
}

func TestProviders_SetActive_SingletonInvariant(t *testing.T) {
	s := newTestStore(t)
	a := addTestProvider(t, s, "primary", "s3")
	b := addTestProvider(t, s, "secondary", "s3")
	ctx := context.Background()

	if err := s.SetActiveStorageProvider(ctx, a); err != nil {
		t.Fatalf("SetActiveStorageProvider(a) failed: %v", err)
	}
	if err := s.SetActiveStorageProvider(ctx, b); err != nil {
		t.Fatalf("SetActiveStorageProvider(b) failed: %v", err)
	}

	profiles, err := s.ListStorageProviders(ctx)
	if err != nil {
		t.Fatalf("ListStorageProviders failed: %v", err)
	}
	active := 0
	for _, p := range profiles {
		if p.IsActive {
			active++
			if p.ID != b {
				t.Fatalf("expected provider %d active, got %d", b, p.ID)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly 1 active provider, got %d", active)
	}
}

func TestProviders_SetActive_Unknown(t *testing.T) {
	s := newTestStore(t)
	err := s.SetActiveStorageProvider(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProviders_GetActive_NoneIsNotAnError(t *testing.T) {
	s := newTestStore(t)
	addTestProvider(t, s, "idle", "s3")

	active, err := s.GetActiveStorageProvider(context.Background())
	if err != nil {
		t.Fatalf("GetActiveStorageProvider failed: %v", err)
	}
	if active != nil {
		t.Fatalf("expected nil active provider, got %+v", active)
	}
}

func TestProviders_DeleteGuard(t *testing.T) {
	s := newTestStore(t)
	a := addTestProvider(t, s, "a", "s3")
	b := addTestProvider(t, s, "b", "webdav")
	ctx := context.Background()

	if err := s.SetActiveStorageProvider(ctx, a); err != nil {
		t.Fatalf("SetActiveStorageProvider failed: %v", err)
	}
	if err := s.DeleteStorageProvider(ctx, a); !errors.Is(err, ErrActiveConnectionDelete) {
		t.Fatalf("expected ErrActiveConnectionDelete, got %v", err)
	}
	if err := s.SetActiveStorageProvider(ctx, b); err != nil {
		t.Fatalf("SetActiveStorageProvider(b) failed: %v", err)
	}
	if err := s.DeleteStorageProvider(ctx, a); err != nil {
		t.Fatalf("DeleteStorageProvider after switch failed: %v", err)
	}
	if err := s.DeleteStorageProvider(ctx, a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for re-delete, got %v", err)
	}
}
