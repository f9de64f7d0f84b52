package scheduler

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopClosed is returned by Post after the loop has stopped
var ErrLoopClosed = errors.New("loop closed")

// Executor runs posted tasks one at a time, in posting order
type Executor interface {
	Post(task func()) error
}

// Loop is the single goroutine that owns the document. Timers, file
// watchers and other goroutines only post closures to it. After each task
// the checkpoint hook runs, which is where pending mutation records get
// delivered.
type Loop struct {
	tasks      chan func()
	done       chan struct{}
	once       sync.Once
	checkpoint func()
}

// DefaultQueueSize is the task buffer of a Loop
const DefaultQueueSize = 256

// NewLoop creates a loop. checkpoint may be nil.
func NewLoop(queueSize int, checkpoint func()) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Loop{
		tasks:      make(chan func(), queueSize),
		done:       make(chan struct{}),
		checkpoint: checkpoint,
	}
}

// SetCheckpoint replaces the hook run after every task. Call it before Run.
func (l *Loop) SetCheckpoint(checkpoint func()) {
	l.checkpoint = checkpoint
}

// Post queues task. It blocks while the queue is full and fails once the
// loop has stopped.
func (l *Loop) Post(task func()) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- task:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// Run executes tasks until ctx is canceled
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case task := <-l.tasks:
			task()
			if l.checkpoint != nil {
				l.checkpoint()
			}
		}
	}
}

// Inline runs tasks on the calling goroutine. A task posted while another
// one runs is queued and executed before the outer Post returns, so tasks
// never nest. Inline is meant for tests and one-shot runs.
type Inline struct {
	queue      []func()
	running    bool
	checkpoint func()
}

// NewInline creates an inline executor. checkpoint may be nil.
func NewInline(checkpoint func()) *Inline {
	return &Inline{checkpoint: checkpoint}
}

// SetCheckpoint replaces the hook run after every task
func (e *Inline) SetCheckpoint(checkpoint func()) {
	e.checkpoint = checkpoint
}

// Post implements Executor
func (e *Inline) Post(task func()) error {
	e.queue = append(e.queue, task)
	if e.running {
		return nil
	}
	e.running = true
	defer func() { e.running = false }()
	for len(e.queue) > 0 {
		next := e.queue[0]
		e.queue = e.queue[1:]
		next()
		if e.checkpoint != nil {
			e.checkpoint()
		}
	}
	return nil
}
