package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCSRFValidateAndRotate(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	info := mustCreateSession(t, engine, baseSessionInput())

	if err := engine.ValidateCSRFToken(ctx, info.Token, info.CSRFToken); err != nil {
		t.Fatalf("validate bound token: %v", err)
	}
	if err := engine.ValidateCSRFToken(ctx, info.Token, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"); !errors.Is(err, ErrCSRFMismatch) {
		t.Fatalf("expected ErrCSRFMismatch, got %v", err)
	}
	if err := engine.ValidateCSRFToken(ctx, info.Token, ""); !errors.Is(err, ErrCSRFMismatch) {
		t.Fatalf("expected ErrCSRFMismatch for empty token, got %v", err)
	}

	rotated, err := engine.RotateCSRFToken(ctx, info.Token)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotated == info.CSRFToken {
		t.Fatal("rotation returned the same token")
	}
	if len(rotated) != 32 {
		t.Fatalf("expected 32-char token, got %d", len(rotated))
	}

	if err := engine.ValidateCSRFToken(ctx, info.Token, info.CSRFToken); !errors.Is(err, ErrCSRFMismatch) {
		t.Fatalf("old token must stop validating, got %v", err)
	}
	if err := engine.ValidateCSRFToken(ctx, info.Token, rotated); err != nil {
		t.Fatalf("validate rotated token: %v", err)
	}
}

func TestCSRFTokenIsSessionBound(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	first := mustCreateSession(t, engine, baseSessionInput())

	other := baseSessionInput()
	other.PrincipalID = "u2"
	second := mustCreateSession(t, engine, other)

	if first.CSRFToken == second.CSRFToken {
		t.Fatal("csrf tokens must be unique per session")
	}

	// A concurrently valid session's token does not transfer.
	if err := engine.ValidateCSRFToken(ctx, first.Token, second.CSRFToken); !errors.Is(err, ErrCSRFMismatch) {
		t.Fatalf("expected ErrCSRFMismatch across sessions, got %v", err)
	}
}

func TestRotateCSRFTokenCannotReviveIdleSession(t *testing.T) {
	engine, _, clock := newTestEngine(t, testConfig())
	ctx := context.Background()

	input := baseSessionInput()
	input.RememberMe = true
	info := mustCreateSession(t, engine, input)

	clock.Advance(24*time.Hour + time.Minute)

	if _, err := engine.RotateCSRFToken(ctx, info.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// Expiry through rotation is terminal too: the session is gone.
	if _, err := engine.ValidateSession(ctx, info.Token, ClientContext{}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after expiry, got %v", err)
	}
}

func TestCSRFStoreOutageIsNotMissingSession(t *testing.T) {
	engine, mr, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	info := mustCreateSession(t, engine, baseSessionInput())
	mr.Close()

	if err := engine.ValidateCSRFToken(ctx, info.Token, info.CSRFToken); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := engine.RotateCSRFToken(ctx, info.Token); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestCSRFUnknownSession(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())

	err := engine.ValidateCSRFToken(context.Background(), "missing-token", "whatever")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
