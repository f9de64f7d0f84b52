package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped
type Timer interface {
	// Stop prevents the callback from firing and reports whether it was
	// still pending.
	Stop() bool
}

// Clock schedules callbacks after a delay
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules callbacks with the time package
type RealClock struct{}

// AfterFunc implements Clock
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock only advances when told to. Callbacks run synchronously inside
// Advance, in due order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *ManualClock
	due     time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// NewManualClock creates a clock at time zero
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc implements Clock
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, due: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Now returns the elapsed manual time
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns the number of timers that have neither fired nor stopped
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves time forward by d, firing every timer that becomes due,
// including timers scheduled by the callbacks themselves
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		t := c.next(target)
		if t == nil {
			break
		}
		t.f()
	}

	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

// next pops the earliest due timer and moves the clock to its due time
func (c *ManualClock) next(target time.Duration) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.timers = live
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].due == c.timers[j].due {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].due < c.timers[j].due
	})
	if len(c.timers) == 0 || c.timers[0].due > target {
		return nil
	}
	t := c.timers[0]
	t.fired = true
	if t.due > c.now {
		c.now = t.due
	}
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
