package middleware

import (
	"net/http"
	"sync"
	"time"

	"reservo/pkg/logger"
)

// OrgExtractor pulls the tenant identifier a request should be throttled by.
type OrgExtractor func(r *http.Request) string

func DefaultOrgExtractor(r *http.Request) string {
	return r.Header.Get("X-Org-ID")
}

// OrgRateLimiter applies a sliding-window request limit per tenant org.
// Requests without an org header pass through unthrottled.
type OrgRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor OrgExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewOrgRateLimiter(limit int, window time.Duration, extractor OrgExtractor, log *logger.Logger) *OrgRateLimiter {
	limiter := &OrgRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *OrgRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for org, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, org)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *OrgRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *OrgRateLimiter) Allow(org string) bool {
	if org == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[org][:0:0]
	for _, ts := range rl.requests[org] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[org] = valid
		return false
	}

	rl.requests[org] = append(valid, now)
	return true
}

func OrgRateLimit(limiter *OrgRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			org := ""
			if limiter.extractor != nil {
				org = limiter.extractor(r)
			}

			if org == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(org) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFrom(r.Context()),
					"org_id", org,
					"path", r.URL.Path,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Rate limit exceeded, try again later"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
