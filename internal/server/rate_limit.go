package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows a fixed number of requests per client and window.
// Clients are identified by IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	rate    int
	window  time.Duration
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

type clientWindow struct {
	remaining int
	start     time.Time
}

// RateLimiterConfig configures a RateLimiter. Zero fields take defaults.
type RateLimiterConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

// DefaultRateLimiterConfig allows 120 requests per minute per client.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerMinute: 120,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewRateLimiter starts a limiter and its background cleanup. Call Stop to
// release it.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	defaults := DefaultRateLimiterConfig()
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = defaults.RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}

	rl := &RateLimiter{
		clients: make(map[string]*clientWindow),
		rate:    config.RequestsPerMinute,
		window:  time.Minute,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop(config.CleanupInterval)
	return rl
}

// Allow consumes one request for client and reports whether it fits in the
// current window.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cw, ok := rl.clients[client]
	if !ok || now.Sub(cw.start) >= rl.window {
		rl.clients[client] = &clientWindow{remaining: rl.rate - 1, start: now}
		return true
	}
	if cw.remaining > 0 {
		cw.remaining--
		return true
	}
	return false
}

// evictExpired drops clients whose window ended more than one window ago.
func (rl *RateLimiter) evictExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for client, cw := range rl.clients {
		if now.Sub(cw.start) > 2*rl.window {
			delete(rl.clients, client)
		}
	}
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evictExpired()
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the background cleanup. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// RateLimitMiddleware answers 429 once a client exhausts its window.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			_ = writeJSON(w, http.StatusTooManyRequests, errorBody(http.StatusTooManyRequests, "rate_limited",
				"Rate limit exceeded. Please try again later.", ""))
			return
		}
		next(w, r)
	}
}

// clientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then the
// remote address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.Trim(r.RemoteAddr, "[]")
	}
	return host
}
