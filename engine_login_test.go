package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func loginTestSetup(t *testing.T) (*Engine, *memoryProvider) {
	t.Helper()

	provider := newMemoryProvider()
	engine, _, _ := newTestEngine(t, testConfig(), func(b *Builder) {
		b.WithCredentialProvider(provider)
	})

	record, err := engine.HashPassword(context.Background(), "Correct-h0rse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	provider.add("alice@example.com", &Principal{
		ID:             "u1",
		Email:          "alice@example.com",
		PasswordRecord: record,
		Role:           RoleUser,
		Verified:       true,
	})

	return engine, provider
}

func TestLoginSuccessIssuesSession(t *testing.T) {
	engine, _ := loginTestSetup(t)
	ctx := context.Background()

	info, err := engine.Login(ctx, "alice@example.com", "Correct-h0rse", ClientContext{IP: "203.0.113.7"}, false)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if info.PrincipalID != "u1" || info.Email != "alice@example.com" || !info.Verified {
		t.Fatalf("unexpected session: %+v", info)
	}

	if _, err := engine.ValidateSession(ctx, info.Token, ClientContext{}); err != nil {
		t.Fatalf("validate issued session: %v", err)
	}
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	engine, _ := loginTestSetup(t)
	ctx := context.Background()

	_, wrongErr := engine.Login(ctx, "alice@example.com", "wrong-password", ClientContext{}, false)
	_, unknownErr := engine.Login(ctx, "nobody@example.com", "wrong-password", ClientContext{}, false)

	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: want ErrInvalidCredentials, got %v", wrongErr)
	}
	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown user: want ErrInvalidCredentials, got %v", unknownErr)
	}
	if wrongErr.Error() != unknownErr.Error() {
		t.Fatalf("errors must be indistinguishable: %q vs %q", wrongErr, unknownErr)
	}
}

func TestLockoutScenario(t *testing.T) {
	engine, _, clock := newTestEngine(t, testConfig())
	ctx := context.Background()

	// Four failures leave one attempt.
	var status LockoutStatus
	var err error
	for i := 0; i < 4; i++ {
		status, err = engine.RecordFailedAttempt(ctx, "u1")
		if err != nil {
			t.Fatalf("failure %d: %v", i+1, err)
		}
		if status.Locked {
			t.Fatalf("locked after %d failures", i+1)
		}
	}
	if status.AttemptsLeft != 1 {
		t.Fatalf("expected 1 attempt left, got %d", status.AttemptsLeft)
	}

	// The fifth failure opens the lock and reports it on the same call.
	status, err = engine.RecordFailedAttempt(ctx, "u1")
	if err != nil {
		t.Fatalf("fifth failure: %v", err)
	}
	if !status.Locked {
		t.Fatal("expected fifth failure to lock")
	}
	lockWindow := status.LockedUntil.Sub(clock.Now())
	if lockWindow < 14*time.Minute || lockWindow > 16*time.Minute {
		t.Fatalf("expected ~15m lock, got %v", lockWindow)
	}

	// A sixth attempt is rejected by the lock probe alone.
	locked, err := engine.IsLocked(ctx, "u1")
	if err != nil {
		t.Fatalf("is locked: %v", err)
	}
	if !locked {
		t.Fatal("expected identifier to be locked")
	}
}

func TestLoginLockoutThroughLoginPath(t *testing.T) {
	engine, _ := loginTestSetup(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := engine.Login(ctx, "alice@example.com", "wrong-password", ClientContext{}, false); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	if _, err := engine.Login(ctx, "alice@example.com", "wrong-password", ClientContext{}, false); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("fifth failure: expected ErrAccountLocked, got %v", err)
	}

	// The lock holds even for the correct password.
	if _, err := engine.Login(ctx, "alice@example.com", "Correct-h0rse", ClientContext{}, false); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked with correct password, got %v", err)
	}
}

func TestIdentifierLockDeniesExistingSessions(t *testing.T) {
	engine, _ := loginTestSetup(t)
	ctx := context.Background()

	info, err := engine.Login(ctx, "alice@example.com", "Correct-h0rse", ClientContext{}, false)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if info.PrincipalID == "alice@example.com" {
		t.Fatal("fixture must keep principal id and identifier distinct")
	}

	for i := 0; i < 5; i++ {
		_, _ = engine.Login(ctx, "alice@example.com", "wrong-password", ClientContext{}, false)
	}
	locked, err := engine.IsLocked(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("is locked: %v", err)
	}
	if !locked {
		t.Fatal("expected identifier lock")
	}

	// The lock was opened under the identifier, but the session issued
	// before it must be denied all the same.
	if _, err := engine.ValidateSession(ctx, info.Token, ClientContext{}); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	// A fresh successful login clears both lockout keys and validation
	// recovers without reissuing the session.
	if err := engine.RecordLoginSuccess(ctx, "alice@example.com"); err != nil {
		t.Fatalf("record success: %v", err)
	}
	if _, err := engine.ValidateSession(ctx, info.Token, ClientContext{}); err != nil {
		t.Fatalf("validate after lock cleared: %v", err)
	}
}

func TestSuccessResetsLockoutState(t *testing.T) {
	engine, _ := loginTestSetup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = engine.Login(ctx, "alice@example.com", "wrong-password", ClientContext{}, false)
	}

	if _, err := engine.Login(ctx, "alice@example.com", "Correct-h0rse", ClientContext{}, false); err != nil {
		t.Fatalf("login after failures: %v", err)
	}

	// The counter restarted: four more failures still do not lock.
	for i := 0; i < 4; i++ {
		if _, err := engine.Login(ctx, "alice@example.com", "wrong-password", ClientContext{}, false); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("post-reset attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}
}

func TestRecordLoginSuccessClearsLock(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = engine.RecordFailedAttempt(ctx, "u1")
	}
	locked, _ := engine.IsLocked(ctx, "u1")
	if !locked {
		t.Fatal("expected lock")
	}

	if err := engine.RecordLoginSuccess(ctx, "u1"); err != nil {
		t.Fatalf("record success: %v", err)
	}
	locked, err := engine.IsLocked(ctx, "u1")
	if err != nil {
		t.Fatalf("is locked: %v", err)
	}
	if locked {
		t.Fatal("expected lock cleared")
	}

	until, err := engine.LockedUntil(ctx, "u1")
	if err != nil {
		t.Fatalf("locked until: %v", err)
	}
	if !until.IsZero() {
		t.Fatalf("expected zero locked-until, got %v", until)
	}
}

func TestLoginWithoutProvider(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())

	if _, err := engine.Login(context.Background(), "alice@example.com", "pw", ClientContext{}, false); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}
