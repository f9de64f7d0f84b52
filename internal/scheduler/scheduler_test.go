package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/bnema/subreddit-filter/internal/dom"
)

type recorder struct {
	clock *ManualClock
	runs  []Trigger
	at    []time.Duration
}

func (r *recorder) sweep(t Trigger) {
	r.runs = append(r.runs, t)
	r.at = append(r.at, r.clock.Now())
}

func newTestScheduler(cfg Config) (*Scheduler, *ManualClock, *recorder) {
	clock := NewManualClock()
	rec := &recorder{clock: clock}
	s := New(cfg, clock, NewInline(nil), rec.sweep)
	return s, clock, rec
}

var inserted = []dom.MutationRecord{{Type: dom.ChildList, AddedNodes: []*html.Node{{Type: html.ElementNode, Data: "div"}}}}

func TestMutationBurstCoalesces(t *testing.T) {
	s, clock, rec := newTestScheduler(DefaultConfig())

	for i := 0; i < 10; i++ {
		s.OnMutations(inserted)
		clock.Advance(10 * time.Millisecond)
	}
	assert.Empty(t, rec.runs, "no sweep while the burst continues")
	assert.True(t, s.HasPending())

	clock.Advance(50 * time.Millisecond)
	require.Equal(t, []Trigger{TriggerMutation}, rec.runs)
	assert.Equal(t, 140*time.Millisecond, rec.at[0])
	assert.False(t, s.HasPending())

	stats := s.Stats()
	assert.Equal(t, 10, stats.Requests[TriggerMutation])
	assert.Equal(t, 1, stats.Sweeps[TriggerMutation])
	assert.Equal(t, 9, stats.Coalesced)
}

func TestAttributeOnlyBatchesAreIgnored(t *testing.T) {
	s, clock, rec := newTestScheduler(DefaultConfig())

	s.OnMutations([]dom.MutationRecord{{Type: dom.Attributes, AttributeName: "style"}})
	clock.Advance(time.Second)

	assert.Empty(t, rec.runs)
}

func TestSeparateBurstsSweepSeparately(t *testing.T) {
	s, clock, rec := newTestScheduler(DefaultConfig())

	s.OnMutations(inserted)
	clock.Advance(60 * time.Millisecond)
	s.OnMutations(inserted)
	clock.Advance(60 * time.Millisecond)

	assert.Equal(t, []Trigger{TriggerMutation, TriggerMutation}, rec.runs)
}

func TestStartupCascade(t *testing.T) {
	s, clock, rec := newTestScheduler(DefaultConfig())

	s.Start()
	require.Equal(t, []Trigger{TriggerStartup}, rec.runs, "first sweep is immediate")

	clock.Advance(10 * time.Second)
	assert.Len(t, rec.runs, 11)
	assert.Equal(t, []time.Duration{
		0, 50 * time.Millisecond, 100 * time.Millisecond, 250 * time.Millisecond,
		500 * time.Millisecond, 750 * time.Millisecond, time.Second, 1500 * time.Millisecond,
		2500 * time.Millisecond, 4 * time.Second, 6 * time.Second,
	}, rec.at)
	assert.Equal(t, 0, clock.Pending())
}

func TestScrollCascade(t *testing.T) {
	s, clock, rec := newTestScheduler(DefaultConfig())

	s.Request(TriggerScroll)
	clock.Advance(time.Second)

	assert.Equal(t, []time.Duration{0, 25 * time.Millisecond, 75 * time.Millisecond, 150 * time.Millisecond}, rec.at)
}

func TestConfigTriggerRunsOnceImmediately(t *testing.T) {
	s, clock, rec := newTestScheduler(DefaultConfig())

	s.Request(TriggerConfig)
	assert.Equal(t, []Trigger{TriggerConfig}, rec.runs)
	assert.Equal(t, 0, clock.Pending())
}

func TestConfigChangeDoesNotCancelCascades(t *testing.T) {
	s, clock, rec := newTestScheduler(DefaultConfig())

	s.Request(TriggerScroll)
	s.Request(TriggerConfig)
	clock.Advance(time.Second)

	assert.Equal(t, []Trigger{TriggerScroll, TriggerConfig, TriggerScroll, TriggerScroll, TriggerScroll}, rec.runs)
}

func TestStopCancelsEverything(t *testing.T) {
	s, clock, rec := newTestScheduler(DefaultConfig())

	s.Start()
	s.OnMutations(inserted)
	s.Stop()
	clock.Advance(10 * time.Second)
	s.Request(TriggerScroll)

	assert.Equal(t, []Trigger{TriggerStartup}, rec.runs)
	assert.Equal(t, 0, clock.Pending())
}

func TestSupersededTimerThatAlreadyFiredIsDropped(t *testing.T) {
	clock := NewManualClock()
	var queued []func()
	exec := executorFunc(func(task func()) error {
		queued = append(queued, task)
		return nil
	})
	var runs int
	s := New(DefaultConfig(), clock, exec, func(Trigger) { runs++ })

	s.OnMutations(inserted)
	clock.Advance(50 * time.Millisecond)
	require.Len(t, queued, 1, "first timer fired, its task is still queued")

	s.OnMutations(inserted)
	queued[0]()
	assert.Equal(t, 0, runs, "stale task must not sweep")
	assert.True(t, s.HasPending())

	clock.Advance(50 * time.Millisecond)
	require.Len(t, queued, 2)
	queued[1]()
	assert.Equal(t, 1, runs)
}

func TestTriggerString(t *testing.T) {
	assert.Equal(t, "mutation", TriggerMutation.String())
	assert.Equal(t, "scroll", TriggerScroll.String())
	assert.Equal(t, "startup", TriggerStartup.String())
	assert.Equal(t, "config", TriggerConfig.String())
	assert.Equal(t, "unknown", Trigger(42).String())
}

type executorFunc func(func()) error

func (f executorFunc) Post(task func()) error { return f(task) }
