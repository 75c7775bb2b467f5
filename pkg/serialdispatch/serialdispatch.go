// Package serialdispatch runs closures one at a time.
//
// Dispatch executes inline on the caller's goroutine when nothing else is
// running, and otherwise hands the closure to a worker and waits for it.
// A closure must not call Dispatch on the same Dispatcher.
package serialdispatch

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("serialdispatch: dispatcher closed")

type request struct {
	fn     func() error
	result chan error
}

type Dispatcher struct {
	// token holds one value while no closure is running.
	token   chan struct{}
	queue   chan request
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// New returns a Dispatcher whose fallback queue holds queueSize requests.
func New(queueSize int) *Dispatcher {
	if queueSize < 1 {
		queueSize = 1
	}
	d := &Dispatcher{
		token:   make(chan struct{}, 1),
		queue:   make(chan request, queueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	d.token <- struct{}{}
	go d.worker()
	return d
}

// Dispatch runs fn exclusively and returns its error, or ErrClosed if the
// dispatcher shut down before fn could run.
func (d *Dispatcher) Dispatch(fn func() error) error {
	select {
	case <-d.done:
		return ErrClosed
	default:
	}

	select {
	case <-d.token:
		return d.run(fn)
	default:
	}

	req := request{fn: fn, result: make(chan error, 1)}
	select {
	case d.queue <- req:
	case <-d.done:
		return ErrClosed
	}

	select {
	case err := <-req.result:
		return err
	case <-d.stopped:
		select {
		case err := <-req.result:
			return err
		default:
			return ErrClosed
		}
	}
}

// run executes fn while holding the token.
func (d *Dispatcher) run(fn func() error) error {
	defer func() { d.token <- struct{}{} }()
	select {
	case <-d.done:
		return ErrClosed
	default:
	}
	return fn()
}

func (d *Dispatcher) worker() {
	defer close(d.stopped)
	for {
		select {
		case <-d.done:
			d.drain()
			return
		case req := <-d.queue:
			select {
			case <-d.token:
				req.result <- d.run(req.fn)
			case <-d.done:
				req.result <- ErrClosed
				d.drain()
				return
			}
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case req := <-d.queue:
			req.result <- ErrClosed
		default:
			return
		}
	}
}

// Close rejects new and queued work and waits for the worker to exit. A
// closure already running completes normally.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.done) })
	<-d.stopped
}
