// Package engine wires the filter components around one document: the
// compiled stylesheet, the sweep filter and the scheduler that runs it.
//
// All methods must run on the executor's goroutine. The host creates the
// executor with the document's Flush as checkpoint so that mutation batches
// reach the scheduler after every task.
package engine

import (
	"fmt"

	"github.com/bnema/subreddit-filter/internal/compiler"
	"github.com/bnema/subreddit-filter/internal/dom"
	"github.com/bnema/subreddit-filter/internal/extractor"
	"github.com/bnema/subreddit-filter/internal/log"
	"github.com/bnema/subreddit-filter/internal/models"
	"github.com/bnema/subreddit-filter/internal/scheduler"
	"github.com/bnema/subreddit-filter/internal/styler"
	"github.com/bnema/subreddit-filter/internal/sweep"
)

// SweepHook is called after every sweep
type SweepHook func(t scheduler.Trigger, res sweep.Result)

type options struct {
	schedule     scheduler.Config
	compilerOpts []compiler.Option
	sweepOpts    []sweep.Option
	styleID      string
	trackingSize int
	onSweep      SweepHook
}

// Option configures an Engine
type Option func(*options)

// WithSchedule replaces the default trigger timings
func WithSchedule(cfg scheduler.Config) Option {
	return func(o *options) {
		o.schedule = cfg
	}
}

// WithCompilerOptions passes options to the rule compiler
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(o *options) {
		o.compilerOpts = append(o.compilerOpts, opts...)
	}
}

// WithSweepOptions passes options to the sweep filter
func WithSweepOptions(opts ...sweep.Option) Option {
	return func(o *options) {
		o.sweepOpts = append(o.sweepOpts, opts...)
	}
}

// WithStyleID sets the id of the injected style element
func WithStyleID(id string) Option {
	return func(o *options) {
		o.styleID = id
	}
}

// WithTrackingCache sizes the tracking-context cache of the trackers
// category
func WithTrackingCache(size int) Option {
	return func(o *options) {
		o.trackingSize = size
	}
}

// OnSweep registers a hook called after every sweep
func OnSweep(hook SweepHook) Option {
	return func(o *options) {
		o.onSweep = hook
	}
}

// Engine keeps one document filtered against the current block-list
type Engine struct {
	doc      *dom.Document
	compiler *compiler.Compiler
	styler   *styler.Styler
	filter   *sweep.Filter
	sched    *scheduler.Scheduler
	onSweep  SweepHook

	bl         models.BlockList
	disconnect func()
	sweeps     int
}

// New creates an engine for doc. Nothing touches the document until Start.
func New(doc *dom.Document, exec scheduler.Executor, clock scheduler.Clock, opts ...Option) (*Engine, error) {
	o := options{
		schedule:     scheduler.DefaultConfig(),
		trackingSize: extractor.DefaultTrackingCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	categories := sweep.DefaultCategories()
	for i := range categories {
		if categories[i].Name == sweep.CategoryTrackers {
			categories[i].Strategy = extractor.NewTrackingStrategy(o.trackingSize)
		}
	}
	sweepOpts := append([]sweep.Option{sweep.WithCategories(categories...)}, o.sweepOpts...)
	filter, err := sweep.New(doc, sweepOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating sweep filter: %w", err)
	}

	e := &Engine{
		doc:      doc,
		compiler: compiler.New(o.compilerOpts...),
		styler:   styler.New(doc, o.styleID),
		filter:   filter,
		onSweep:  o.onSweep,
	}
	e.sched = scheduler.New(o.schedule, clock, exec, e.sweep)
	return e, nil
}

// Start applies the stylesheet for bl, runs the startup sweeps and begins
// observing the document
func (e *Engine) Start(bl models.BlockList) {
	if e.disconnect != nil {
		e.Reconfigure(bl)
		return
	}
	e.bl = bl
	e.applyStyles()
	e.sched.Start()
	e.disconnect = e.doc.Observe(e.onMutations)
	log.Info(map[string]any{"communities": bl.Len()}, "filter started")
}

// Reconfigure switches to bl: the stylesheet is rebuilt, everything hidden
// so far is restored, then one sweep runs against the new list
func (e *Engine) Reconfigure(bl models.BlockList) {
	e.bl = bl
	e.applyStyles()
	restored := e.filter.Restore()
	log.Debug(map[string]any{"restored": restored}, "restored hidden elements")
	e.sched.Request(scheduler.TriggerConfig)
}

// Scroll reports a scroll of the viewport
func (e *Engine) Scroll() {
	e.sched.Request(scheduler.TriggerScroll)
}

// Stop disconnects the mutation observer and cancels every pending sweep.
// Hidden elements stay hidden.
func (e *Engine) Stop() {
	if e.disconnect != nil {
		e.disconnect()
		e.disconnect = nil
	}
	e.sched.Stop()
}

// BlockList returns the list the engine filters against
func (e *Engine) BlockList() models.BlockList {
	return e.bl
}

// Sweeps returns the number of sweeps run so far
func (e *Engine) Sweeps() int {
	return e.sweeps
}

// SchedulerStats returns the scheduler counters
func (e *Engine) SchedulerStats() scheduler.Stats {
	return e.sched.Stats()
}

// CompilerStats returns the statistics of the last stylesheet build
func (e *Engine) CompilerStats() compiler.Stats {
	return e.compiler.Stats()
}

// Filter returns the sweep filter
func (e *Engine) Filter() *sweep.Filter {
	return e.filter
}

func (e *Engine) applyStyles() {
	css := e.compiler.Compile(e.bl)
	e.styler.Apply(css)
}

func (e *Engine) sweep(t scheduler.Trigger) {
	res := e.filter.Sweep(e.bl)
	e.sweeps++
	if res.Hidden() > 0 {
		log.Debug(map[string]any{"trigger": t.String(), "hidden": res.Hidden()}, "sweep hid elements")
	}
	if e.onSweep != nil {
		e.onSweep(t, res)
	}
}

// onMutations drops records caused by the style element's own updates
func (e *Engine) onMutations(records []dom.MutationRecord) {
	style := e.styler.Element()
	relevant := records[:0:0]
	for _, r := range records {
		if style != nil && r.Target == style {
			continue
		}
		relevant = append(relevant, r)
	}
	e.sched.OnMutations(relevant)
}
