package middleware

import (
    "context"
    "sync"
    "time"
)

// InvalidAuthRateLimiter limits failed authentication attempts per IP.
type InvalidAuthRateLimiter struct {
    mu       sync.Mutex
    attempts map[string]*attemptInfo
    limit    int
    window   time.Duration
    now      func() time.Time
}

type attemptInfo struct {
    count   int
    firstAt time.Time
}

// NewInvalidAuthRateLimiter allows limit failures per window for each IP.
func NewInvalidAuthRateLimiter(limit int, window time.Duration) *InvalidAuthRateLimiter {
    return &InvalidAuthRateLimiter{
        attempts: make(map[string]*attemptInfo),
        limit:    limit,
        window:   window,
        now:      time.Now,
    }
}

// Allow records a failed attempt from ip and reports whether it is still
// within the limit.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
    r.mu.Lock()
    defer r.mu.Unlock()

    now := r.now()
    info, exists := r.attempts[ip]
    if !exists || now.Sub(info.firstAt) > r.window {
        r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
        return true
    }

    if info.count >= r.limit {
        return false
    }
    info.count++
    return true
}

// Cleanup drops expired windows until ctx is cancelled.
func (r *InvalidAuthRateLimiter) Cleanup(ctx context.Context, interval time.Duration) {
    ticker := time.NewTicker(interval)
    defer ticker.Stop()
    for {
        select {
        case <-ticker.C:
            r.sweep()
        case <-ctx.Done():
            return
        }
    }
}

func (r *InvalidAuthRateLimiter) sweep() {
    r.mu.Lock()
    defer r.mu.Unlock()
    now := r.now()
    for ip, info := range r.attempts {
        if now.Sub(info.firstAt) > r.window {
            delete(r.attempts, ip)
        }
    }
}
