// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

package crypto

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func newTestVault(t *testing.T, key string) *Vault {
	t.Helper()
	v, err := New(key)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return v
}

func TestNew_EmptyKeyFails(t *testing.T) {
	if _, err := New(""); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	v := newTestVault(t, "test-key-material")
	for _, s := range []string{"", "p@ssw0rd", "with:colons:inside", strings.Repeat("x", 4096), "unicode éè€"} {
		blob, err := v.Encrypt(s)
		if err != nil {
			t.Fatalf("Encrypt(%q) failed: %v", s, err)
		}
		if parts := strings.Split(blob, ":"); len(parts) != 3 {
			t.Fatalf("expected 3 blob segments, got %d", len(parts))
		}
		out, err := v.Decrypt(blob)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if out != s {
			t.Fatalf("round trip mismatch: got %q want %q", out, s)
		}
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	v := newTestVault(t, "test-key-material")
	a, _ := v.Encrypt("same plaintext")
	b, _ := v.Encrypt("same plaintext")
	if a == b {
		t.Fatal("two encryptions of the same plaintext produced identical blobs")
	}
}

func TestDecrypt_TamperDetection(t *testing.T) {
	v := newTestVault(t, "test-key-material")
	blob, err := v.Encrypt("sensitive value")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	parts := strings.Split(blob, ":")

	// Flip one byte in every segment in turn; all must fail, never return
	// a different plaintext silently.
	for i := range parts {
		raw, err := hex.DecodeString(parts[i])
		if err != nil {
			t.Fatalf("segment %d not hex: %v", i, err)
		}
		if len(raw) == 0 {
			continue
		}
		raw[0] ^= 0xff
		tampered := make([]string, 3)
		copy(tampered, parts)
		tampered[i] = hex.EncodeToString(raw)
		if _, err := v.Decrypt(strings.Join(tampered, ":")); !errors.Is(err, ErrDecrypt) {
			t.Fatalf("tampered segment %d: expected ErrDecrypt, got %v", i, err)
		}
	}
}

func TestDecrypt_MalformedBlob(t *testing.T) {
	v := newTestVault(t, "test-key-material")
	for _, blob := range []string{"", "onlyone", "two:segments", "a:b:c:d", "zz:00:00", "000000000000000000000000:zz:00"} {
		if _, err := v.Decrypt(blob); !errors.Is(err, ErrDecrypt) {
			t.Fatalf("Decrypt(%q): expected ErrDecrypt, got %v", blob, err)
		}
	}
}

func TestDecrypt_KeyMismatch(t *testing.T) {
	v1 := newTestVault(t, "key-one")
	v2 := newTestVault(t, "key-two")
	blob, err := v1.Encrypt("secret under key one")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := v2.Decrypt(blob); !errors.Is(err, ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt on key mismatch, got %v", err)
	}
}

func TestSameKeyMaterial_NewVaultDecrypts(t *testing.T) {
	// Simulates a process restart: a new Vault from the same material must
	// decrypt blobs produced by the old one.
	v1 := newTestVault(t, "stable-material")
	blob, err := v1.Encrypt("persisted secret")
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	v2 := newTestVault(t, "stable-material")
	out, err := v2.Decrypt(blob)
	if err != nil {
		t.Fatalf("Decrypt after restart failed: %v", err)
	}
	if out != "persisted secret" {
		t.Fatalf("unexpected plaintext: %q", out)
	}
}

func TestSelfTest(t *testing.T) {
	v := newTestVault(t, "test-key-material")
	if err := v.SelfTest(); err != nil {
		t.Fatalf("SelfTest failed: %v", err)
	}
}
