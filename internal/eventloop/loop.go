// Package eventloop provides the single-goroutine UI loop that every window
// and geometry mutation runs on.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrStopped is returned by Post once the loop has been stopped.
	ErrStopped = errors.New("event loop stopped")
	// ErrNotOnLoop is the panic value raised by MustBeOnLoop.
	ErrNotOnLoop = errors.New("not running on the event loop")
)

// Func is a unit of work executed on the loop. ctx identifies the loop turn
// running it and is cancelled when the loop shuts down.
type Func func(ctx context.Context)

// Task is a deferred unit of work created by AfterFunc.
type Task interface {
	// Stop prevents the task from running. It returns false if the task
	// already started or was already stopped.
	Stop() bool
}

// Scheduler schedules one-shot deferred work.
type Scheduler interface {
	AfterFunc(d time.Duration, fn Func) Task
}

type turnKey struct{}

type turn struct {
	loop *Loop
	id   uint64
}

// Loop is a FIFO task queue drained by a single goroutine.
type Loop struct {
	logger *slog.Logger

	mu      sync.Mutex
	queue   []Func
	stopped bool
	wake    chan struct{}
	done    chan struct{}

	turns   atomic.Uint64
	current atomic.Uint64
}

var _ Scheduler = (*Loop)(nil)

// New creates a loop. It does nothing until Run is called.
func New(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Run drains the queue on the calling goroutine until ctx is done or Stop is
// called. Tasks still queued at that point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("event loop started")
	defer l.logger.Debug("event loop stopped")

	for {
		fn, ok := l.next()
		if ok {
			l.runTask(ctx, fn)
			continue
		}

		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

// Post enqueues fn to run on the loop.
func (l *Loop) Post(fn Func) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Stop makes Run return after the current task. It is safe to call more than
// once and from any goroutine.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped {
		return
	}
	l.stopped = true
	l.queue = nil
	close(l.done)
}

// Done is closed once the loop has been stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// AfterFunc posts fn to the loop once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn Func) Task {
	t := &timerTask{}
	t.timer = time.AfterFunc(d, func() {
		if t.state.Load() != taskPending {
			return
		}
		if err := l.Post(func(ctx context.Context) {
			if !t.state.CompareAndSwap(taskPending, taskStarted) {
				return
			}
			fn(ctx)
		}); err != nil {
			l.logger.Debug("deferred task dropped", "error", err)
		}
	})
	return t
}

// OnLoop reports whether ctx belongs to the turn this loop is executing right
// now.
func (l *Loop) OnLoop(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	tr, ok := ctx.Value(turnKey{}).(turn)
	if !ok || tr.loop != l {
		return false
	}
	return l.current.Load() == tr.id
}

// MustBeOnLoop panics with ErrNotOnLoop unless ctx belongs to the running
// turn.
func (l *Loop) MustBeOnLoop(ctx context.Context) {
	if !l.OnLoop(ctx) {
		panic(fmt.Errorf("eventloop: %w", ErrNotOnLoop))
	}
}

func (l *Loop) next() (Func, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) runTask(ctx context.Context, fn Func) {
	id := l.turns.Add(1)
	l.current.Store(id)
	defer l.current.Store(0)

	// A panicking task must not take the loop down with it.
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("event loop task panic recovered", "error", err)
		}
	}()

	fn(context.WithValue(ctx, turnKey{}, turn{loop: l, id: id}))
}

const (
	taskPending int32 = iota
	taskStarted
	taskStopped
)

type timerTask struct {
	timer *time.Timer
	state atomic.Int32
}

func (t *timerTask) Stop() bool {
	if !t.state.CompareAndSwap(taskPending, taskStopped) {
		return false
	}
	t.timer.Stop()
	return true
}
