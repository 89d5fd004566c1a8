// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/toeirei/confvault/internal/model"
)

func addTestConnection(t *testing.T, s Store, name string) int {
	t.Helper()
	id, err := s.AddConnection(context.Background(), model.DatabaseConnectionProfile{
		Name:     name,
		Engine:   "postgres",
		Host:     "db-" + name,
		Port:     5432,
		Database: "appdata",
		Username: "svc",
		Password: "dead:beef:cafe", // ciphertext placeholder; this layer never decrypts
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("AddConnection(%s) failed: %v", name, err)
	}
	return id
}

func countActiveConnections(t *testing.T, s Store) int {
	t.Helper()
	profiles, err := s.ListConnections(context.Background())
	if err != nil {
		t.Fatalf("ListConnections failed: %v", err)
	}
	n := 0
	for _, p := range profiles {
		if p.IsActive {
			n++
		}
	}
	return n
}

func TestConnections_CreateInactiveByDefault(t *testing.T) {
	s := newTestStore(t)
	id := addTestConnection(t, s, "alpha")

	p, err := s.GetConnection(context.Background(), id)
	if err != nil {
		t.Fatalf("GetConnection failed: %v", err)
	}
	if p.IsActive {
		t.Fatal("new profiles must not be active")
	}
	if p.Name != "alpha" || p.Database != "appdata" {
		t.Fatalf("unexpected profile round trip: %+v", p)
	}
}

func TestConnections_ListOrderedByName(t *testing.T) {
	s := newTestStore(t)
	addTestConnection(t, s, "zeta")
	addTestConnection(t, s, "alpha")
	addTestConnection(t, s, "mid")

	profiles, err := s.ListConnections(context.Background())
	if err != nil {
		t.Fatalf("ListConnections failed: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(profiles))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if profiles[i].Name != want {
			t.Fatalf("position %d: got %q want %q", i, profiles[i].Name, want)
		}
	}
}

func TestConnections_SetActive_SingletonInvariant(t *testing.T) {
	s := newTestStore(t)
	a := addTestConnection(t, s, "a")
	b := addTestConnection(t, s, "b")
	ctx := context.Background()

	if err := s.SetActiveConnection(ctx, a); err != nil {
		t.Fatalf("SetActiveConnection(a) failed: %v", err)
	}
	if got := countActiveConnections(t, s); got != 1 {
		t.Fatalf("expected exactly 1 active profile, got %d", got)
	}

	if err := s.SetActiveConnection(ctx, b); err != nil {
		t.Fatalf("SetActiveConnection(b) failed: %v", err)
	}
	if got := countActiveConnections(t, s); got != 1 {
		t.Fatalf("after switch: expected exactly 1 active profile, got %d", got)
	}
	active, err := s.GetActiveConnection(ctx)
	if err != nil {
		t.Fatalf("GetActiveConnection failed: %v", err)
	}
	if active == nil || active.ID != b {
		t.Fatalf("expected profile %d active, got %+v", b, active)
	}
}

func TestConnections_SetActive_UnknownIDRollsBack(t *testing.T) {
	s := newTestStore(t)
	a := addTestConnection(t, s, "a")
	ctx := context.Background()

	if err := s.SetActiveConnection(ctx, a); err != nil {
		t.Fatalf("SetActiveConnection failed: %v", err)
	}
	// The failed activation must roll back the clear step: a stays active.
	if err := s.SetActiveConnection(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	active, err := s.GetActiveConnection(ctx)
	if err != nil {
		t.Fatalf("GetActiveConnection failed: %v", err)
	}
	if active == nil || active.ID != a {
		t.Fatalf("rollback failed: expected %d still active, got %+v", a, active)
	}
}

func TestConnections_GetActive_NoneIsNotAnError(t *testing.T) {
	s := newTestStore(t)
	addTestConnection(t, s, "idle")

	active, err := s.GetActiveConnection(context.Background())
	if err != nil {
		t.Fatalf("GetActiveConnection failed: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no active profile on fresh table, got %+v", active)
	}
}

func TestConnections_DeleteGuard(t *testing.T) {
	s := newTestStore(t)
	a := addTestConnection(t, s, "a")
	b := addTestConnection(t, s, "b")
	ctx := context.Background()

	if err := s.SetActiveConnection(ctx, a); err != nil {
		t.Fatalf("SetActiveConnection failed: %v", err)
	}
	if err := s.DeleteConnection(ctx, a); !errors.Is(err, ErrActiveConnectionDelete) {
		t.Fatalf("expected ErrActiveConnectionDelete, got %v", err)
	}
	// After switching, the old active profile becomes deletable.
	if err := s.SetActiveConnection(ctx, b); err != nil {
		t.Fatalf("SetActiveConnection(b) failed: %v", err)
	}
	if err := s.DeleteConnection(ctx, a); err != nil {
		t.Fatalf("DeleteConnection after switch failed: %v", err)
	}
	if _, err := s.GetConnection(ctx, a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestConnections_Delete_Unknown(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteConnection(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConnections_Update_PartialPatch(t *testing.T) {
	s := newTestStore(t)
	id := addTestConnection(t, s, "patchme")
	ctx := context.Background()

	host := "db-new"
	port := 5433
	time.Sleep(5 * time.Millisecond) // let updated_at visibly advance
	if err := s.UpdateConnection(ctx, id, model.ConnectionUpdate{Host: &host, Port: &port}); err != nil {
		t.Fatalf("UpdateConnection failed: %v", err)
	}
	p, err := s.GetConnection(ctx, id)
	if err != nil {
		t.Fatalf("GetConnection failed: %v", err)
	}
	if p.Host != "db-new" || p.Port != 5433 {
		t.Fatalf("patch not applied: %+v", p)
	}
	if p.Username != "svc" || p.Name != "patchme" {
		t.Fatalf("untouched fields changed: %+v", p)
	}
	if !p.UpdatedAt.After(p.CreatedAt) {
		t.Fatal("expected updated_at to advance past created_at")
	}
}

func TestConnections_Update_UnknownIDByAffectedRows(t *testing.T) {
	s := newTestStore(t)
	host := "nowhere"
	err := s.UpdateConnection(context.Background(), 777, model.ConnectionUpdate{Host: &host})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConnections_ConcurrentSetActive_Converges(t *testing.T) {
	s := newTestStore(t)
	a := addTestConnection(t, s, "a")
	b := addTestConnection(t, s, "b")
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		id := a
		if i%2 == 1 {
			id = b
		}
		go func(target int) {
			defer wg.Done()
			if err := s.SetActiveConnection(ctx, target); err != nil {
				t.Errorf("SetActiveConnection(%d) failed: %v", target, err)
			}
		}(id)
	}
	wg.Wait()

	if got := countActiveConnections(t, s); got != 1 {
		t.Fatalf("after concurrent activations: expected exactly 1 active, got %d", got)
	}
	active, err := s.GetActiveConnection(ctx)
	if err != nil {
		t.Fatalf("GetActiveConnection failed: %v", err)
	}
	if active == nil || (active.ID != a && active.ID != b) {
		t.Fatalf("expected one of the contested profiles active, got %+v", active)
	}
}
