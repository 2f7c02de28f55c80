package server

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock 可手动推进的时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(5, 10, time.Second)
	ip := "127.0.0.1"

	for i := range 5 {
		assert.True(t, rl.Allow(ip), "request %d should be allowed", i)
	}
	assert.False(t, rl.Allow(ip), "6th request should be blocked")
	assert.True(t, rl.IsBanned(ip))
	assert.False(t, rl.IsBanned("10.9.9.9"))
}

func TestRateLimiter_BanExpires(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	rl := NewRateLimiter(10, 50, 2*time.Second)
	rl.now = clock.Now
	ip := "192.168.1.1"

	for range 10 {
		assert.True(t, rl.Allow(ip))
	}
	assert.False(t, rl.Allow(ip))
	assert.True(t, rl.IsBanned(ip))

	clock.Advance(2100 * time.Millisecond)
	assert.False(t, rl.IsBanned(ip))
	assert.True(t, rl.Allow(ip))
}

func TestRateLimiter_MinuteLimit(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	rl := NewRateLimiter(100, 5, time.Second)
	rl.now = clock.Now
	ip := "10.0.0.1"

	for range 5 {
		assert.True(t, rl.Allow(ip))
		clock.Advance(1100 * time.Millisecond)
	}
	assert.False(t, rl.Allow(ip))
}

func TestRateLimiter_Prune(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	rl := NewRateLimiter(5, 10, time.Second)
	rl.now = clock.Now

	rl.Allow("a")
	rl.Allow("b")
	assert.Equal(t, 0, rl.Prune())

	clock.Advance(11 * time.Minute)
	assert.Equal(t, 2, rl.Prune())
}

func TestRateLimiter_Concurrency(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(100, 200, time.Second)
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		successCount int
	)

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("concurrent-test") {
				mu.Lock()
				successCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, successCount)
}

func TestGetClientIP_ProxyHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expectedIP string
	}{
		{"direct connection", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"forwarded single", "10.0.0.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "203.0.113.1"},
		{"forwarded chain", "10.0.0.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.2"}, "203.0.113.1"},
		{"real ip", "10.0.0.1:12345", map[string]string{"X-Real-IP": "203.0.113.2"}, "203.0.113.2"},
		{"forwarded wins", "10.0.0.1:12345", map[string]string{
			"X-Forwarded-For": "203.0.113.3",
			"X-Real-IP":       "203.0.113.4",
		}, "203.0.113.3"},
		{"no port", "pipe", nil, "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expectedIP, GetClientIP(req))
		})
	}
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	ml := NewMessageRateLimiter(5)
	ml.now = clock.Now

	for i := range 5 {
		allowed, warning := ml.AllowMessage("c1")
		assert.True(t, allowed)
		// 阈值为 5/2=2，第 3 条起提示
		assert.Equal(t, i >= 2, warning, "message %d", i)
	}

	allowed, warning := ml.AllowMessage("c1")
	assert.False(t, allowed)
	assert.True(t, warning)
	assert.Equal(t, 1, ml.WarningCount("c1"))

	clock.Advance(time.Second)
	allowed, warning = ml.AllowMessage("c1")
	assert.True(t, allowed)
	assert.False(t, warning)

	ml.RemoveClient("c1")
	assert.Equal(t, 0, ml.WarningCount("c1"))
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	all := NewOriginChecker([]string{"*"})
	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")
	assert.True(t, all.Check(req))

	oc := NewOriginChecker([]string{"https://example.com", "https://APP.example.com"})
	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://example.com", true},
		{"https://app.example.com", true},
		{"https://evil.com", false},
		{"http://example.com", false},
		{"", true},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.allowed, oc.Check(req), "origin %q", tt.origin)
	}
}
