package service

import (
	"sync"
	"time"
)

// Cooldown is a process-wide flag engaged when the timetable provider
// fails. While it is active the schedule path accepts expired cache
// entries on the first lookup instead of hammering the provider.
type Cooldown struct {
	mu       sync.Mutex
	until    time.Time
	duration time.Duration
	now      func() time.Time
}

// NewCooldown builds a flag that stays engaged for the given duration.
func NewCooldown(duration time.Duration) *Cooldown {
	if duration <= 0 {
		duration = time.Minute
	}
	return &Cooldown{duration: duration, now: time.Now}
}

// Active reports whether the flag is currently engaged.
func (c *Cooldown) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.until)
}

// Engage starts the cooldown window, extending it if already running.
func (c *Cooldown) Engage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.until = c.now().Add(c.duration)
}
