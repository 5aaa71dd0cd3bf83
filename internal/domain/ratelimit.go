package domain

import (
	"context"
	"time"
)

// RateLimitDecision reports the outcome of one fixed-window check, with
// enough detail to emit RateLimit-* response headers.
type RateLimitDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter throttles login attempts per client key. Implementations live
// in infra (in-process map or Redis) and are shared safely across requests.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitDecision, error)
}
