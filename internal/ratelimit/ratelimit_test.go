package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(limit int) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	l := New(limit, time.Minute)
	l.now = clock.Now
	return l, clock
}

func TestAllow_WithinLimit(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(30)
	for i := 0; i < 30; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d: denied, want admitted", i+1)
		}
	}
}

func TestAllow_DeniesOverLimit(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(3)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d: denied, want admitted", i+1)
		}
	}

	// The (limit+1)-th and every following request in the window are denied.
	for i := 0; i < 5; i++ {
		if l.Allow("10.0.0.1") {
			t.Fatalf("over-limit request %d: admitted, want denied", i+1)
		}
	}
}

func TestAllow_WindowReset(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(2)
	l.Allow("10.0.0.1")
	l.Allow("10.0.0.1")
	if l.Allow("10.0.0.1") {
		t.Fatal("third request in window: admitted, want denied")
	}

	clock.Advance(61 * time.Second)

	if !l.Allow("10.0.0.1") {
		t.Error("first request of new window: denied, want admitted")
	}
}

func TestAllow_ExactWindowBoundaryNotExpired(t *testing.T) {
	t.Parallel()

	// Expiry requires strictly more than the window to elapse.
	l, clock := newTestLimiter(1)
	l.Allow("10.0.0.1")
	clock.Advance(time.Minute)

	if l.Allow("10.0.0.1") {
		t.Error("request at exactly 60s: admitted, want denied (window not yet expired)")
	}
}

func TestAllow_ClientsIndependent(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(1)
	if !l.Allow("10.0.0.1") {
		t.Fatal("client A first request denied")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("client A second request admitted, want denied")
	}

	// Client B has its own window.
	if !l.Allow("10.0.0.2") {
		t.Error("client B first request denied, want admitted")
	}
}

func TestAllow_ConcurrentSingleClient(t *testing.T) {
	t.Parallel()

	const limit = 50
	const requests = 200

	l, _ := newTestLimiter(limit)

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("10.0.0.1") {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != limit {
		t.Errorf("admitted: got %d, want exactly %d", got, limit)
	}
}

func TestClientKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{
			name:       "forwarded single value",
			forwarded:  "203.0.113.7",
			remoteAddr: "10.0.0.1:54321",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded takes first of list",
			forwarded:  "203.0.113.7, 198.51.100.2, 10.0.0.1",
			remoteAddr: "10.0.0.1:54321",
			want:       "203.0.113.7",
		},
		{
			name:       "forwarded with spaces",
			forwarded:  "  203.0.113.7 ,198.51.100.2",
			remoteAddr: "10.0.0.1:54321",
			want:       "203.0.113.7",
		},
		{
			name:       "blank forwarded falls back to remote addr",
			forwarded:  "   ",
			remoteAddr: "10.0.0.1:54321",
			want:       "10.0.0.1",
		},
		{
			name:       "no forwarded header",
			forwarded:  "",
			remoteAddr: "192.0.2.44:8080",
			want:       "192.0.2.44",
		},
		{
			name:       "remote addr without port",
			forwarded:  "",
			remoteAddr: "192.0.2.44",
			want:       "192.0.2.44",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, "/email", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			if got := ClientKey(r); got != tt.want {
				t.Errorf("ClientKey(): got %q, want %q", got, tt.want)
			}
		})
	}
}
