package testfixtures

import (
	"sync"
	"time"

	"github.com/example/fitness-manager/internal/gym"
)

// Clock is a manually driven time source. Services take its Now method in
// place of time.Now so session expiry can be exercised without sleeping.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Date renders the current day in the layout gym records store.
func (c *Clock) Date() string {
	return c.Now().Format(gym.DateLayout)
}
