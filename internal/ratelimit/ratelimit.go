package ratelimit

import (
	"log/slog"
	"sync"
)

// Limiter caps the number of LLM requests a single run may issue. Scoring
// and summarization share the same budget; when it is spent the model
// scorer degrades to neutral scores rather than aborting the run.
type Limiter struct {
	mu       sync.Mutex
	count    int
	maxTotal int // 0 = unlimited
}

func New(maxTotal int) *Limiter {
	return &Limiter{maxTotal: maxTotal}
}

// Allow reports whether one more request fits the budget and consumes it.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxTotal > 0 && l.count >= l.maxTotal {
		slog.Warn("LLM request budget exhausted", "used", l.count, "max", l.maxTotal)
		return false
	}
	l.count++
	return true
}

// Used returns how many requests were consumed so far.
func (l *Limiter) Used() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
