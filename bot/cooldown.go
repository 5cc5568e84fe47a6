package bot

import (
	"math"
	"sync"
	"time"
)

// Cooldown suppresses repeat check-in attempts per user. Suppressed attempts
// do not extend the window; only an accepted attempt does.
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

func NewCooldown(window time.Duration) *Cooldown {
	return &Cooldown{window: window, last: make(map[string]time.Time)}
}

// Check reports whether userID is still inside the window at now, and how
// many whole seconds remain (rounded up).
func (c *Cooldown) Check(userID string, now time.Time) (suppressed bool, remaining int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	last, ok := c.last[userID]
	if !ok {
		return false, 0
	}
	elapsed := now.Sub(last)
	if elapsed >= c.window {
		return false, 0
	}
	left := c.window - elapsed
	return true, int(math.Ceil(left.Seconds()))
}

// Touch marks an accepted attempt for userID at now.
func (c *Cooldown) Touch(userID string, now time.Time) {
	c.mu.Lock()
	c.last[userID] = now
	c.mu.Unlock()
}

// Sweep drops entries older than the window. Run it periodically so the map
// does not grow with every user ever seen.
func (c *Cooldown) Sweep(now time.Time) {
	c.mu.Lock()
	for id, last := range c.last {
		if now.Sub(last) >= c.window {
			delete(c.last, id)
		}
	}
	c.mu.Unlock()
}

// StartJanitor sweeps on the given interval until stop is closed.
func (c *Cooldown) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				c.Sweep(now)
			case <-stop:
				return
			}
		}
	}()
}
