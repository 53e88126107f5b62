package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/veriport/authcore"
)

func newTestEngine(t *testing.T) *authcore.Engine {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := authcore.DefaultConfig()
	cfg.Password.Iterations = 1000

	engine, err := authcore.New().
		WithConfig(cfg).
		WithRedis(client).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func newSession(t *testing.T, engine *authcore.Engine, role authcore.Role) *authcore.SessionInfo {
	t.Helper()

	info, err := engine.CreateSession(context.Background(), authcore.CreateSessionInput{
		PrincipalID: "u1",
		Email:       "u1@example.com",
		Role:        role,
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return info
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGuardAcceptsCookieSession(t *testing.T) {
	engine := newTestEngine(t)
	info := newSession(t, engine, authcore.RoleUser)

	var seen *authcore.SessionInfo
	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: info.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.PrincipalID != "u1" {
		t.Fatalf("session missing from context: %+v", seen)
	}
}

func TestGuardAcceptsBearerToken(t *testing.T) {
	engine := newTestEngine(t)
	info := newSession(t, engine, authcore.RoleUser)

	handler := Guard(engine)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+info.Token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGuardRejectsMissingAndBogusTokens(t *testing.T) {
	engine := newTestEngine(t)
	handler := Guard(engine)(okHandler())

	for _, setup := range []func(*http.Request){
		func(r *http.Request) {},
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-token") },
		func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "AAAAAAAAAAAAAAAAAAAAAA"})
		},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		setup(req)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	engine := newTestEngine(t)
	info := newSession(t, engine, authcore.RoleUser)

	handler := Guard(engine)(RequireRole(authcore.RoleAdmin)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: info.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role on admin route, got %d", rec.Code)
	}

	admin := newSession(t, engine, authcore.RoleAdmin)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: admin.Token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role, got %d", rec.Code)
	}
}

func TestCSRFEnforcedOnUnsafeMethods(t *testing.T) {
	engine := newTestEngine(t)
	info := newSession(t, engine, authcore.RoleUser)

	handler := Guard(engine)(CSRF(engine)(okHandler()))

	// GET passes without a token.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: info.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for GET, got %d", rec.Code)
	}

	// POST without a token is rejected.
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: info.Token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for POST without csrf token, got %d", rec.Code)
	}

	// POST with the bound token passes.
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: info.Token})
	req.Header.Set(CSRFHeaderName, info.CSRFToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for POST with csrf token, got %d", rec.Code)
	}
}

func TestThrottleRejectsBurstOverflow(t *testing.T) {
	throttle := NewThrottle(ThrottleConfig{
		Rate:  1,
		Burst: 2,
	})
	defer throttle.Stop()

	handler := throttle.Middleware()(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:4242"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("expected first two requests allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request throttled, got %v", codes)
	}

	// A different client gets its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.10:4242"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected other client allowed, got %d", rec.Code)
	}
}
