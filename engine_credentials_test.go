package authcore

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	record, err := engine.HashPassword(ctx, "S3cure-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.Contains(record, ":") {
		t.Fatalf("expected salt:hash record, got %q", record)
	}

	if !engine.VerifyPassword(ctx, "S3cure-pass", record) {
		t.Fatal("correct password rejected")
	}
	if engine.VerifyPassword(ctx, "S3cure-pasz", record) {
		t.Fatal("wrong password accepted")
	}
	if engine.VerifyPassword(ctx, "S3cure-pass", "corrupt-record") {
		t.Fatal("malformed record accepted")
	}
}

func TestHashPasswordEnforcesPolicy(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())

	_, err := engine.HashPassword(context.Background(), "short")
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}

	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected *PolicyError, got %T", err)
	}
	if len(policyErr.Violations) == 0 {
		t.Fatal("expected at least one violation")
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())

	cases := []struct {
		password   string
		violations int
	}{
		{"S3cure-pass", 0},
		{"s3cure-pass", 1},  // no uppercase
		{"S3CURE-PASS", 1},  // no lowercase
		{"Secure-pass", 1},  // no digit
		{"S3curepass", 1},   // no special
		{"", 5},             // everything
	}

	for _, tc := range cases {
		if got := engine.ValidatePasswordStrength(tc.password); len(got) != tc.violations {
			t.Fatalf("%q: expected %d violations, got %d: %v", tc.password, tc.violations, len(got), got)
		}
	}
}
