// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"testing"

	"github.com/toeirei/confvault/internal/model"
)

func TestSettings_SetGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := model.ConfigEntry{
		Key:      "ui.page_size",
		Value:    "50",
		Type:     model.ValueNumber,
		Category: "ui",
		IsPublic: true,
	}
	if err := s.SetConfigEntry(ctx, entry); err != nil {
		t.Fatalf("SetConfigEntry failed: %v", err)
	}

	got, err := s.GetConfigEntry(ctx, "ui.page_size")
	if err != nil {
		t.Fatalf("GetConfigEntry failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected entry, got nil")
	}
	if got.Value != "50" || got.Type != model.ValueNumber || got.Category != "ui" || !got.IsPublic {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSettings_Get_UnknownIsNil(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetConfigEntry(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetConfigEntry failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown key, got %+v", got)
	}
}

func TestSettings_Set_UpsertOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := model.ConfigEntry{Key: "smtp.host", Value: "mail.old", Type: model.ValueString, Category: "mail"}
	if err := s.SetConfigEntry(ctx, first); err != nil {
		t.Fatalf("initial set failed: %v", err)
	}
	second := first
	second.Value = "mail.new"
	if err := s.SetConfigEntry(ctx, second); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	all, err := s.GetAllConfigEntries(ctx)
	if err != nil {
		t.Fatalf("GetAllConfigEntries failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("upsert must not duplicate rows, got %d", len(all))
	}
	if all[0].Value != "mail.new" {
		t.Fatalf("expected overwritten value, got %q", all[0].Value)
	}
}

func TestSettings_Set_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := model.ConfigEntry{Key: "feature.sync", Value: "true", Type: model.ValueBoolean, Category: "features"}
	for i := 0; i < 3; i++ {
		if err := s.SetConfigEntry(ctx, entry); err != nil {
			t.Fatalf("set %d failed: %v", i, err)
		}
	}
	all, err := s.GetAllConfigEntries(ctx)
	if err != nil {
		t.Fatalf("GetAllConfigEntries failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected single row after repeated sets, got %d", len(all))
	}
}

func TestSettings_PublicSubset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries := []model.ConfigEntry{
		{Key: "smtp.host", Value: "mail.example.org", Type: model.ValueString, Category: "mail", IsPublic: true},
		{Key: "smtp.password", Value: "ffff:eeee:dddd", Type: model.ValueString, Category: "mail"},
		{Key: "ui.theme", Value: "dark", Type: model.ValueString, Category: "ui", IsPublic: true},
	}
	for _, e := range entries {
		if err := s.SetConfigEntry(ctx, e); err != nil {
			t.Fatalf("SetConfigEntry(%s) failed: %v", e.Key, err)
		}
	}

	public, err := s.GetPublicConfigEntries(ctx)
	if err != nil {
		t.Fatalf("GetPublicConfigEntries failed: %v", err)
	}
	if len(public) != 2 {
		t.Fatalf("expected 2 public entries, got %d", len(public))
	}
	for _, e := range public {
		if !e.IsPublic {
			t.Fatalf("non-public entry %q in public listing", e.Key)
		}
	}

	all, err := s.GetAllConfigEntries(ctx)
	if err != nil {
		t.Fatalf("GetAllConfigEntries failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries in full listing, got %d", len(all))
	}
}

func TestSettings_AllOrderedByCategoryThenKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, e := range []model.ConfigEntry{
		{Key: "zz", Value: "1", Type: model.ValueString, Category: "b"},
		{Key: "aa", Value: "1", Type: model.ValueString, Category: "b"},
		{Key: "mm", Value: "1", Type: model.ValueString, Category: "a"},
	} {
		if err := s.SetConfigEntry(ctx, e); err != nil {
			t.Fatalf("SetConfigEntry failed: %v", err)
		}
	}

	all, err := s.GetAllConfigEntries(ctx)
	if err != nil {
		t.Fatalf("GetAllConfigEntries failed: %v", err)
	}
	var got []string
	for _, e := range all {
		got = append(got, e.Category+"/"+e.Key)
	}
	want := []string{"a/mm", "b/aa", "b/zz"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordering mismatch at %d: got %v want %v", i, got, want)
		}
	}
}
