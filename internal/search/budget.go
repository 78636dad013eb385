// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"sync"
	"time"
)

// Budget counts calls made through one adapter instance and refuses calls
// once the per-window limit is reached. Each adapter owns its own Budget,
// so orchestrators built with different credentials never share counters.
type Budget struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	used    int
	resetAt time.Time
	now     func() time.Time
}

// NewBudget returns a budget allowing limit calls per window. A limit of
// zero or less returns nil, which allows every call.
func NewBudget(limit int, window time.Duration) *Budget {
	if limit <= 0 {
		return nil
	}
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Budget{limit: limit, window: window, now: time.Now}
}

// Take reserves one call. It reports false when the window is exhausted.
func (b *Budget) Take() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.resetAt.IsZero() || !now.Before(b.resetAt) {
		b.used = 0
		b.resetAt = now.Add(b.window)
	}
	if b.used >= b.limit {
		return false
	}
	b.used++
	return true
}
