// Copyright (c) 2025 ToeiRei
// ConfVault - configuration and credential vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package crypto implements the credential vault: authenticated symmetric
// encryption of secret strings with a key supplied once at process start.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// ErrDecrypt is returned when a ciphertext blob is malformed, has been
// tampered with, or was produced under a different key. Callers must treat
// it as terminal; there is no silent wrong-plaintext path.
var ErrDecrypt = errors.New("decryption failed")

// ErrMissingKey is returned by New when no key material is supplied. The
// process must not start without a key: fabricating one would silently break
// decryption of previously stored secrets after a restart.
var ErrMissingKey = errors.New("encryption key material is missing")

const (
	// kdfSalt is fixed on purpose. The key material itself is the secret;
	// the KDF only stretches it to the AES-256 key size deterministically,
	// so the same material always yields the same key across restarts.
	kdfSalt       = "confvault-key-derivation"
	kdfIterations = 100_000
	keyLen        = 32
	nonceLen      = 12
)

// Vault performs AES-256-GCM encryption of secret strings. The derived key
// is immutable for the lifetime of the Vault.
type Vault struct {
	aead cipher.AEAD
}

// New derives an AES-256 key from the supplied material and returns a ready
// Vault. It fails when the material is empty.
func New(keyMaterial string) (*Vault, error) {
	if keyMaterial == "" {
		return nil, ErrMissingKey
	}
	key := pbkdf2.Key([]byte(keyMaterial), []byte(kdfSalt), kdfIterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to construct cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to construct GCM: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns the blob as
// hex(nonce):hex(tag):hex(ciphertext).
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := v.aead.Seal(nil, nonce, []byte(plaintext), nil)
	// Seal appends the auth tag to the ciphertext; split it out so the blob
	// layout stays explicit and stable.
	tagStart := len(sealed) - v.aead.Overhead()
	ct, tag := sealed[:tagStart], sealed[tagStart:]
	return fmt.Sprintf("%s:%s:%s", hex.EncodeToString(nonce), hex.EncodeToString(tag), hex.EncodeToString(ct)), nil
}

// Decrypt opens a blob produced by Encrypt. Malformed encodings, tampered
// data and key mismatches all surface as ErrDecrypt.
func (v *Vault) Decrypt(blob string) (string, error) {
	parts := strings.Split(blob, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: expected 3 segments, got %d", ErrDecrypt, len(parts))
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceLen {
		return "", fmt.Errorf("%w: bad nonce segment", ErrDecrypt)
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("%w: bad tag segment", ErrDecrypt)
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("%w: bad ciphertext segment", ErrDecrypt)
	}
	plaintext, err := v.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrDecrypt)
	}
	return string(plaintext), nil
}

// SelfTest encrypts and decrypts a probe value, verifying the loaded key is
// usable end to end. Used by the health command.
func (v *Vault) SelfTest() error {
	const probe = "confvault-selftest"
	blob, err := v.Encrypt(probe)
	if err != nil {
		return err
	}
	out, err := v.Decrypt(blob)
	if err != nil {
		return err
	}
	if out != probe {
		return fmt.Errorf("%w: round trip mismatch", ErrDecrypt)
	}
	return nil
}
