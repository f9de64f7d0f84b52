// Package scheduler decides when sweeps run. Every trigger source (mutation
// batches, scrolling, startup, configuration changes) maps to a fixed plan:
// run now, run after a debounce window, and/or run again after fixed delays.
package scheduler

import (
	"time"

	"github.com/bnema/subreddit-filter/internal/dom"
	"github.com/bnema/subreddit-filter/internal/log"
)

// Trigger identifies what asked for a sweep
type Trigger int

const (
	TriggerMutation Trigger = iota
	TriggerScroll
	TriggerStartup
	TriggerConfig
)

func (t Trigger) String() string {
	switch t {
	case TriggerMutation:
		return "mutation"
	case TriggerScroll:
		return "scroll"
	case TriggerStartup:
		return "startup"
	case TriggerConfig:
		return "config"
	}
	return "unknown"
}

// Plan says how a trigger schedules sweeps
type Plan struct {
	Immediate bool
	// Debounce coalesces requests: each one cancels the pending sweep and
	// schedules a new one after the window.
	Debounce time.Duration
	// Delays are fire-and-forget follow-up sweeps.
	Delays []time.Duration
}

// Config holds the timings of the trigger table
type Config struct {
	Debounce      time.Duration
	StartupDelays []time.Duration
	ScrollDelays  []time.Duration
}

// DefaultConfig covers the usual hydration and lazy-load latencies
func DefaultConfig() Config {
	return Config{
		Debounce: 50 * time.Millisecond,
		StartupDelays: []time.Duration{
			50 * time.Millisecond,
			100 * time.Millisecond,
			250 * time.Millisecond,
			500 * time.Millisecond,
			750 * time.Millisecond,
			1000 * time.Millisecond,
			1500 * time.Millisecond,
			2500 * time.Millisecond,
			4000 * time.Millisecond,
			6000 * time.Millisecond,
		},
		ScrollDelays: []time.Duration{
			25 * time.Millisecond,
			75 * time.Millisecond,
			150 * time.Millisecond,
		},
	}
}

// Plans builds the trigger table for cfg
func (cfg Config) Plans() map[Trigger]Plan {
	return map[Trigger]Plan{
		TriggerMutation: {Debounce: cfg.Debounce},
		TriggerScroll:   {Immediate: true, Delays: cfg.ScrollDelays},
		TriggerStartup:  {Immediate: true, Delays: cfg.StartupDelays},
		TriggerConfig:   {Immediate: true},
	}
}

// SweepFunc runs one sweep
type SweepFunc func(Trigger)

// Stats counts requests and the sweeps they caused
type Stats struct {
	Requests  map[Trigger]int
	Sweeps    map[Trigger]int
	Coalesced int
}

// Scheduler owns the pending-sweep state. All methods must be called on the
// executor's goroutine; timer callbacks only post back to it.
type Scheduler struct {
	clock      Clock
	exec       Executor
	sweep      SweepFunc
	plans      map[Trigger]Plan
	pending    Timer
	generation uint64
	timers     map[Timer]struct{}
	stopped    bool
	stats      Stats
}

// New creates a scheduler running sweep on exec
func New(cfg Config, clock Clock, exec Executor, sweep SweepFunc) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{
		clock:  clock,
		exec:   exec,
		sweep:  sweep,
		plans:  cfg.Plans(),
		timers: make(map[Timer]struct{}),
		stats: Stats{
			Requests: make(map[Trigger]int),
			Sweeps:   make(map[Trigger]int),
		},
	}
}

// Request schedules sweeps according to the trigger's plan
func (s *Scheduler) Request(t Trigger) {
	if s.stopped {
		return
	}
	plan := s.plans[t]
	s.stats.Requests[t]++

	if plan.Debounce > 0 {
		s.debounce(t, plan.Debounce)
	}
	if plan.Immediate {
		s.run(t)
	}
	for _, d := range plan.Delays {
		s.after(t, d)
	}
}

// OnMutations is a dom.MutationCallback: any batch inserting nodes requests
// a debounced sweep
func (s *Scheduler) OnMutations(records []dom.MutationRecord) {
	if dom.HasAddedNodes(records) {
		s.Request(TriggerMutation)
	}
}

// Start runs the startup plan
func (s *Scheduler) Start() {
	s.Request(TriggerStartup)
}

// Stop cancels every timer. Requests after Stop are ignored.
func (s *Scheduler) Stop() {
	s.stopped = true
	for t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[Timer]struct{})
	s.pending = nil
}

// HasPending reports whether a debounced sweep is waiting
func (s *Scheduler) HasPending() bool {
	return s.pending != nil
}

// Stats returns a copy of the counters
func (s *Scheduler) Stats() Stats {
	out := Stats{
		Requests:  make(map[Trigger]int, len(s.stats.Requests)),
		Sweeps:    make(map[Trigger]int, len(s.stats.Sweeps)),
		Coalesced: s.stats.Coalesced,
	}
	for k, v := range s.stats.Requests {
		out.Requests[k] = v
	}
	for k, v := range s.stats.Sweeps {
		out.Sweeps[k] = v
	}
	return out
}

func (s *Scheduler) debounce(t Trigger, window time.Duration) {
	if s.pending != nil {
		s.pending.Stop()
		delete(s.timers, s.pending)
		s.stats.Coalesced++
	}
	// A timer that already fired may have its task queued; the generation
	// check drops it.
	s.generation++
	gen := s.generation

	var timer Timer
	timer = s.clock.AfterFunc(window, func() {
		s.post(func() {
			delete(s.timers, timer)
			if s.stopped || gen != s.generation {
				return
			}
			s.pending = nil
			s.run(t)
		})
	})
	s.pending = timer
	s.timers[timer] = struct{}{}
}

func (s *Scheduler) after(t Trigger, d time.Duration) {
	var timer Timer
	timer = s.clock.AfterFunc(d, func() {
		s.post(func() {
			delete(s.timers, timer)
			if s.stopped {
				return
			}
			s.run(t)
		})
	})
	s.timers[timer] = struct{}{}
}

func (s *Scheduler) post(task func()) {
	if err := s.exec.Post(task); err != nil {
		log.Debug(map[string]any{"error": err.Error()}, "dropping scheduled sweep")
	}
}

func (s *Scheduler) run(t Trigger) {
	s.stats.Sweeps[t]++
	s.sweep(t)
}
