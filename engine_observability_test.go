package authcore

import (
	"context"
	"testing"
	"time"
)

func TestAuditEventsReachSink(t *testing.T) {
	sink := NewChannelSink(16)

	cfg := testConfig()
	cfg.Audit.Enabled = true
	engine, _, _ := newTestEngine(t, cfg, func(b *Builder) {
		b.WithAuditSink(sink)
	})

	mustCreateSession(t, engine, baseSessionInput())

	select {
	case event := <-sink.Events():
		if event.EventType != "session_created" || event.PrincipalID != "u1" {
			t.Fatalf("unexpected event: %+v", event)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("event missing timestamp")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event arrived")
	}
}

func TestMetricsSnapshotCounts(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = true
	engine, _, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	info := mustCreateSession(t, engine, baseSessionInput())
	if _, err := engine.ValidateSession(ctx, info.Token, ClientContext{}); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := engine.DestroySession(ctx, info.Token); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSessionCreated] != 1 {
		t.Fatalf("expected 1 created, got %d", snap.Counters[MetricSessionCreated])
	}
	if snap.Counters[MetricSessionValidated] != 1 {
		t.Fatalf("expected 1 validated, got %d", snap.Counters[MetricSessionValidated])
	}
	if snap.Counters[MetricSessionDestroyed] != 1 {
		t.Fatalf("expected 1 destroyed, got %d", snap.Counters[MetricSessionDestroyed])
	}
}

func TestMetricsDisabledByDefault(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())

	mustCreateSession(t, engine, baseSessionInput())
	snap := engine.MetricsSnapshot()
	if len(snap.Counters) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap.Counters)
	}
}

func TestSecurityReport(t *testing.T) {
	cfg := piiTestConfig()
	cfg.Security.EnforceIPBinding = true
	engine, _, _ := newTestEngine(t, cfg)

	report := engine.SecurityReport()
	if report.SessionTTL != 24*time.Hour || report.IdleTimeout != 24*time.Hour {
		t.Fatalf("unexpected session posture: %+v", report)
	}
	if !report.IPBindingEnforced || report.UABindingEnforced {
		t.Fatalf("unexpected binding posture: %+v", report)
	}
	if report.LockoutThreshold != 5 || report.LockoutDuration != 15*time.Minute {
		t.Fatalf("unexpected lockout posture: %+v", report)
	}
	if !report.PIIEncryptionActive {
		t.Fatal("expected pii encryption active")
	}
	if report.ClientTokensActive {
		t.Fatal("client tokens should be inactive without a key")
	}
	if report.KDF.Iterations != 1000 {
		t.Fatalf("unexpected kdf report: %+v", report.KDF)
	}
}
