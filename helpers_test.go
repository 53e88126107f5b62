package authcore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// testClock is a mutable time source installed through Builder.WithClock so
// expiry and idle windows can be driven deterministically.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Now()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig() Config {
	cfg := DefaultConfig()
	// Keep the KDF cheap; cost parameters are covered in package password.
	cfg.Password.Iterations = 1000
	return cfg
}

func newTestEngine(t *testing.T, cfg Config, opts ...func(*Builder)) (*Engine, *miniredis.Miniredis, *testClock) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := newTestClock()
	builder := New().
		WithConfig(cfg).
		WithRedis(client).
		WithClock(clock.Now)
	for _, opt := range opts {
		opt(builder)
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, mr, clock
}

func mustCreateSession(t *testing.T, engine *Engine, input CreateSessionInput) *SessionInfo {
	t.Helper()

	info, err := engine.CreateSession(context.Background(), input)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return info
}

// memoryProvider is an in-memory CredentialProvider for login tests.
type memoryProvider struct {
	mu         sync.Mutex
	principals map[string]*Principal
}

func newMemoryProvider() *memoryProvider {
	return &memoryProvider{principals: make(map[string]*Principal)}
}

func (p *memoryProvider) add(identifier string, principal *Principal) {
	p.mu.Lock()
	p.principals[identifier] = principal
	p.mu.Unlock()
}

func (p *memoryProvider) GetByIdentifier(_ context.Context, identifier string) (*Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.principals[identifier], nil
}
