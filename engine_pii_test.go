package authcore

import (
	"context"
	"errors"
	"testing"
)

func piiTestConfig() Config {
	cfg := testConfig()
	cfg.PII.MasterSecret = []byte("test-master-secret-32-bytes-long")
	return cfg
}

func TestEncryptDecryptField(t *testing.T) {
	engine, _, _ := newTestEngine(t, piiTestConfig())
	ctx := context.Background()

	encoded, err := engine.EncryptField(ctx, "123-45-6789")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	decoded, err := engine.DecryptField(ctx, encoded)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if decoded != "123-45-6789" {
		t.Fatalf("round trip mismatch: %q", decoded)
	}

	// Fresh randomness per call.
	again, err := engine.EncryptField(ctx, "123-45-6789")
	if err != nil {
		t.Fatalf("second encrypt: %v", err)
	}
	if again == encoded {
		t.Fatal("identical ciphertext for identical plaintext")
	}
}

func TestDecryptFieldFailsClosed(t *testing.T) {
	engine, _, _ := newTestEngine(t, piiTestConfig())
	ctx := context.Background()

	for _, encoded := range []string{"", "not-base64!!!", "AAAA"} {
		if _, err := engine.DecryptField(ctx, encoded); !errors.Is(err, ErrDecryption) {
			t.Fatalf("input %q: expected ErrDecryption, got %v", encoded, err)
		}
	}

	// Tampering breaks the tag.
	encoded, err := engine.EncryptField(ctx, "sensitive")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	tampered := []byte(encoded)
	tampered[len(tampered)-5] ^= 1
	if _, err := engine.DecryptField(ctx, string(tampered)); !errors.Is(err, ErrDecryption) {
		t.Fatalf("expected ErrDecryption for tampered field, got %v", err)
	}
}

func TestPIIDisabledWithoutMasterSecret(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	if _, err := engine.EncryptField(ctx, "x"); !errors.Is(err, ErrPIIDisabled) {
		t.Fatalf("expected ErrPIIDisabled, got %v", err)
	}
	if _, err := engine.DecryptField(ctx, "x"); !errors.Is(err, ErrPIIDisabled) {
		t.Fatalf("expected ErrPIIDisabled, got %v", err)
	}
}

func TestMaskForDisplay(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())

	if got := engine.MaskForDisplay("jane.doe@example.com"); got != "ja****************om" {
		t.Fatalf("unexpected mask: %q", got)
	}
	if got := engine.MaskForDisplay("abc"); got != "***" {
		t.Fatalf("short values must be fully masked, got %q", got)
	}
}
