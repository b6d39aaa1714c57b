package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter limits deletions per chat. Bot API has its own per-chat
// limits and it is cheaper to wait here than to get 429.
type rateLimiter struct {
	limiters map[int64]*rate.Limiter
	lastUsed map[int64]time.Time
	mu       sync.RWMutex
	r        rate.Limit
	b        int
	cleanup  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// Wait blocks until a deletion in a chat is allowed.
func (rl *rateLimiter) Wait(ctx context.Context, chatID int64) error {
	if err := rl.get(chatID).Wait(ctx); err != nil {
		return fmt.Errorf("cannot wait for rate limiter: %w", err)
	}

	return nil
}

func (rl *rateLimiter) get(chatID int64) *rate.Limiter {
	// lastUsed is not updated on a fast path. Worst case is that a limiter
	// is recreated by cleanup and a chat gets a fresh burst.
	rl.mu.RLock()
	limiter, exists := rl.limiters[chatID]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists = rl.limiters[chatID]
	if !exists {
		limiter = rate.NewLimiter(rl.r, rl.b)
		rl.limiters[chatID] = limiter
	}

	rl.lastUsed[chatID] = time.Now()

	return limiter
}

// Forget drops a limiter of a chat.
func (rl *rateLimiter) Forget(chatID int64) {
	rl.mu.Lock()
	delete(rl.limiters, chatID)
	delete(rl.lastUsed, chatID)
	rl.mu.Unlock()
}

// Size returns a number of tracked chats.
func (rl *rateLimiter) Size() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	return len(rl.limiters)
}

func (rl *rateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.expire(time.Now().Add(-2 * rl.cleanup))
		}
	}
}

func (rl *rateLimiter) expire(deadline time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for chatID, lastUsed := range rl.lastUsed {
		if lastUsed.Before(deadline) {
			delete(rl.limiters, chatID)
			delete(rl.lastUsed, chatID)
		}
	}
}

// newRateLimiter creates a new limiter. perSecond 0 means no limits.
func newRateLimiter(perSecond uint, burst int, cleanup time.Duration) *rateLimiter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	rl := &rateLimiter{
		limiters: make(map[int64]*rate.Limiter),
		lastUsed: make(map[int64]time.Time),
		r:        limit,
		b:        burst,
		cleanup:  cleanup,
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}
