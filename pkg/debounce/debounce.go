// Package debounce collapses bursts of submissions into a single run of the
// last one.
package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/aislelist/aislelist/pkg/clock"
)

// DefaultDelay matches how long a typist usually pauses between keystrokes.
const DefaultDelay = 300 * time.Millisecond

// Job is a single-slot debouncer. Each Submit replaces whatever is pending:
// the previous timer is stopped and the context handed to its function is
// cancelled, so work that already started can notice it was superseded.
type Job struct {
	clock  clock.Clock
	delay  time.Duration
	parent context.Context

	mu      sync.Mutex
	timer   *clock.Timer
	cancel  context.CancelFunc
	gen     uint64
	pending bool
}

// New returns a Job whose runs are bound to parent. Cancelling parent
// cancels any pending or running submission.
func New(parent context.Context, clk clock.Clock, delay time.Duration) *Job {
	if clk == nil {
		clk = clock.Real()
	}
	return &Job{clock: clk, delay: delay, parent: parent}
}

// Submit schedules fn to run after the delay unless another Submit or
// Cancel arrives first.
func (j *Job) Submit(fn func(ctx context.Context)) {
	j.mu.Lock()
	j.stopLocked()
	j.gen++
	gen := j.gen
	ctx, cancel := context.WithCancel(j.parent)
	j.cancel = cancel
	j.pending = true
	j.mu.Unlock()

	// AfterFunc may run the callback before returning, so it is armed
	// outside the lock.
	timer := j.clock.AfterFunc(j.delay, func() { j.fire(gen, ctx, fn) })

	j.mu.Lock()
	if j.gen == gen && j.pending {
		j.timer = timer
	}
	j.mu.Unlock()
}

func (j *Job) fire(gen uint64, ctx context.Context, fn func(ctx context.Context)) {
	j.mu.Lock()
	if j.gen != gen || ctx.Err() != nil {
		j.mu.Unlock()
		return
	}
	j.pending = false
	j.timer = nil
	j.mu.Unlock()

	fn(ctx)
}

// Cancel drops the pending submission, if any, and cancels the context of
// one that is already running.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.stopLocked()
	j.gen++
}

// Pending reports whether a submission is waiting for its timer.
func (j *Job) Pending() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pending
}

func (j *Job) stopLocked() {
	if j.timer != nil {
		j.timer.Stop()
		j.timer = nil
	}
	if j.cancel != nil {
		j.cancel()
		j.cancel = nil
	}
	j.pending = false
}
