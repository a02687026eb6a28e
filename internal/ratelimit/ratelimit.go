// Package ratelimit implements a fixed-window per-client request limiter.
//
// Each client identifier owns one counter that resets every window. The
// scheme deliberately admits a burst of up to twice the limit across a
// window boundary, which is the usual fixed-window tradeoff.
package ratelimit

import (
	"hash/fnv"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// shardCount spreads client entries across independent locks so distinct
// clients do not contend with each other. Must be a power of two.
const shardCount = 16

// window tracks one client's request count within the current window.
type window struct {
	start time.Time
	count int
}

// shard holds a subset of client windows behind its own lock.
type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

// Limiter admits or denies requests per client identifier using a fixed
// 60-second (configurable) window. The zero value is not usable; use New.
type Limiter struct {
	limit  int
	window time.Duration
	shards [shardCount]*shard

	// now is replaceable in tests for deterministic window expiry.
	now func() time.Time
}

// New creates a Limiter admitting up to limit requests per client per window.
func New(limit int, windowDur time.Duration) *Limiter {
	l := &Limiter{
		limit:  limit,
		window: windowDur,
		now:    time.Now,
	}
	for i := range l.shards {
		l.shards[i] = &shard{windows: make(map[string]*window)}
	}
	return l
}

// Allow reports whether a request from the given client is admitted within
// the current window. The check-and-increment is atomic per client: the
// shard lock covers the whole read-increment-or-replace sequence, so
// concurrent requests from one client cannot jointly exceed the limit.
//
// Entries are never evicted; the map grows with the number of distinct
// client identifiers seen over the process lifetime.
func (l *Limiter) Allow(clientID string) bool {
	s := l.shards[shardIndex(clientID)]
	now := l.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[clientID]
	if !ok || now.Sub(w.start) > l.window {
		s.windows[clientID] = &window{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= l.limit
}

// shardIndex maps a client identifier to its shard.
func shardIndex(clientID string) int {
	h := fnv.New32a()
	h.Write([]byte(clientID))
	return int(h.Sum32() & (shardCount - 1))
}

// ClientKey resolves the client identifier for a request: the first
// comma-separated value of X-Forwarded-For when present and non-blank,
// otherwise the host part of the direct connection address.
func ClientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); strings.TrimSpace(forwarded) != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
