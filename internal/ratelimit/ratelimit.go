package ratelimit

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	KindSummarizer = "summarizer"
	KindTTS        = "tts"
)

// Budget caps daily calls per kind of external service.
// A limit of 0 or less means unlimited.
type Budget struct {
	mu        sync.Mutex
	limits    map[string]int
	counts    map[string]int
	resetTime time.Time
	now       func() time.Time
	log       *slog.Logger
}

// NewBudget creates a budget with the given per-kind daily limits.
func NewBudget(limits map[string]int, log *slog.Logger) *Budget {
	b := &Budget{
		limits: make(map[string]int, len(limits)),
		counts: make(map[string]int),
		now:    time.Now,
		log:    log.With(slog.String("component", "ratelimit")),
	}
	for k, v := range limits {
		b.limits[k] = v
	}
	b.resetTime = b.now().Add(24 * time.Hour)
	return b
}

// Use records one call of kind, or fails when the budget is spent.
func (b *Budget) Use(kind string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	if !b.fits(kind) {
		b.log.Warn("Rate limit reached", slog.String("kind", kind), slog.Int("used", b.counts[kind]), slog.Int("limit", b.limits[kind]))
		return fmt.Errorf("%s rate limit exceeded", kind)
	}
	b.counts[kind]++
	b.log.Debug("Budget used", slog.String("kind", kind), slog.Int("used", b.counts[kind]), slog.Int("limit", b.limits[kind]))
	return nil
}

// Allow reserves one call of kind. A nil Budget allows everything.
func (b *Budget) Allow(kind string) bool {
	if b == nil {
		return true
	}
	return b.Use(kind) == nil
}

// GetStats returns used and limit per kind plus the next reset time.
func (b *Budget) GetStats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	stats := map[string]interface{}{
		"reset_time": b.resetTime.Format(time.RFC3339),
	}
	for kind, limit := range b.limits {
		stats[kind+"_used"] = b.counts[kind]
		stats[kind+"_limit"] = limit
	}
	return stats
}

func (b *Budget) fits(kind string) bool {
	limit := b.limits[kind]
	return limit <= 0 || b.counts[kind] < limit
}

// checkReset clears counters once the reset time has passed. Caller holds mu.
func (b *Budget) checkReset() {
	now := b.now()
	if now.After(b.resetTime) {
		b.log.Info("Resetting rate limit counters")
		b.counts = make(map[string]int)
		b.resetTime = now.Add(24 * time.Hour)
	}
}
