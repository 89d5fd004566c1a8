// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "testing"

func TestConnectionProfileString(t *testing.T) {
	p := DatabaseConnectionProfile{Engine: "postgres", Host: "db-01", Port: 5432, Database: "appdata"}
	if got := p.String(); got != "postgres://db-01:5432/appdata" {
		t.Errorf("unexpected DatabaseConnectionProfile.String(): %q", got)
	}
}

func TestAdminIdentityString(t *testing.T) {
	a := AdminIdentity{Username: "admin", Role: "admin"}
	if got := a.String(); got != "admin (admin)" {
		t.Errorf("unexpected AdminIdentity.String(): %q", got)
	}
}

func TestConnectionUpdateEmpty(t *testing.T) {
	var u ConnectionUpdate
	if !u.Empty() {
		t.Error("zero-value ConnectionUpdate should be empty")
	}
	host := "db-02"
	u.Host = &host
	if u.Empty() {
		t.Error("patch with host set should not be empty")
	}
}

func TestValueTypeValid(t *testing.T) {
	for _, vt := range []ValueType{ValueString, ValueNumber, ValueBoolean, ValueJSON} {
		if !vt.Valid() {
			t.Errorf("expected %q to be valid", vt)
		}
	}
	if ValueType("float").Valid() {
		t.Error("unknown value type should not be valid")
	}
}
