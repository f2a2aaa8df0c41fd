package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionChatTalk      = "chat_talk"
	ActionChatRead      = "chat_read"
	ActionKioskTerminal = "kiosk_terminal"
)

// Rule is a token bucket refilled at PerMinute with capacity Burst.
type Rule struct {
	PerMinute int
	Burst     int
}

func (r Rule) limit() rate.Limit {
	return rate.Limit(float64(r.PerMinute) / 60)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one limiter per key and action.
type RateLimiter struct {
	rules    map[string]Rule
	fallback Rule
	buckets  map[string]*bucket
	mutex    sync.Mutex
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		rules: map[string]Rule{
			ActionChatTalk:      {PerMinute: 10, Burst: 10},
			ActionChatRead:      {PerMinute: 120, Burst: 60},
			ActionKioskTerminal: {PerMinute: 60, Burst: 20},
		},
		fallback: Rule{PerMinute: 20, Burst: 20},
		buckets:  make(map[string]*bucket),
	}
}

// SetRule replaces the rule for action. Existing buckets keep their old rule.
func (rl *RateLimiter) SetRule(action string, rule Rule) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.rules[action] = rule
}

// Allow consumes a token for key (a user id or client IP) and action. When
// the bucket is empty it reports how long until the next token.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	now := time.Now()

	rl.mutex.Lock()
	id := key + ":" + action
	b, ok := rl.buckets[id]
	if !ok {
		rule, found := rl.rules[action]
		if !found {
			rule = rl.fallback
		}
		b = &bucket{limiter: rate.NewLimiter(rule.limit(), rule.Burst)}
		rl.buckets[id] = b
	}
	b.lastSeen = now
	rl.mutex.Unlock()

	reservation := b.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, 0
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-ctx.Done():
				return
			}
		}
	}()
}
