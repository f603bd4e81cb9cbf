package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"drone-delivery/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	limiterSweep   = 5 * time.Minute
	limiterMaxIdle = 30 * time.Minute
)

type ipLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rps      rate.Limit
	burst    int
	log      *zap.Logger
}

// NewRateLimiter starts a sweeper that forgets idle clients until ctx is done.
func NewRateLimiter(ctx context.Context, rps float64, burst int, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		log:      logger,
	}

	go func() {
		t := time.NewTicker(limiterSweep)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				rl.sweep(now, limiterMaxIdle)
			}
		}
	}()

	return rl
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lim, ok := rl.limiters[ip]
	if !ok {
		lim = &ipLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[ip] = lim
	}
	lim.last = now
	return lim.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) sweep(now time.Time, maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, lim := range rl.limiters {
		if now.Sub(lim.last) > maxIdle {
			delete(rl.limiters, ip)
		}
	}
}

// Handler is the middleware.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip, time.Now()) {
			rl.log.Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			utils.ResponseTooManyRequests(w, "Too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the direct peer address. Forwarded headers only count once
// RealIP has vetted them against the trusted proxy list.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
