// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAdmins_EnsureAdmin_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.EnsureAdmin(ctx, "admin", "admin@localhost", "hash-one", "admin"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	// A second bootstrap must not touch the existing row.
	if err := s.EnsureAdmin(ctx, "admin", "other@localhost", "hash-two", "viewer"); err != nil {
		t.Fatalf("repeat EnsureAdmin failed: %v", err)
	}

	got, err := s.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected seeded admin, got nil")
	}
	if got.PasswordHash != "hash-one" || got.Email != "admin@localhost" || got.Role != "admin" {
		t.Fatalf("existing admin was overwritten: %+v", got)
	}
}

func TestAdmins_Get_UnknownIsNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetAdminByUsername(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("GetAdminByUsername failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown username, got %+v", got)
	}
}

func TestAdmins_UpdateLastLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.EnsureAdmin(ctx, "admin", "admin@localhost", "h", "admin"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	before, err := s.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername failed: %v", err)
	}
	if before.LastLoginAt != nil {
		t.Fatalf("fresh admin must have no login timestamp, got %v", before.LastLoginAt)
	}

	start := time.Now().Add(-time.Second)
	if err := s.UpdateAdminLastLogin(ctx, before.ID); err != nil {
		t.Fatalf("UpdateAdminLastLogin failed: %v", err)
	}
	after, err := s.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername failed: %v", err)
	}
	if after.LastLoginAt == nil {
		t.Fatal("expected last login timestamp to be set")
	}
	if after.LastLoginAt.Before(start) {
		t.Fatalf("timestamp too old: %v", after.LastLoginAt)
	}
}

func TestAdmins_UpdateLastLogin_Unknown(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateAdminLastLogin(context.Background(), 9001)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAdmins_UpdatePassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.EnsureAdmin(ctx, "admin", "admin@localhost", "old-hash", "admin"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if err := s.UpdateAdminPassword(ctx, "admin", "new-hash"); err != nil {
		t.Fatalf("UpdateAdminPassword failed: %v", err)
	}
	got, err := s.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAdminByUsername failed: %v", err)
	}
	if got.PasswordHash != "new-hash" {
		t.Fatalf("password hash not rotated: %q", got.PasswordHash)
	}
}

func TestAdmins_UpdatePassword_Unknown(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateAdminPassword(context.Background(), "ghost", "hash")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
