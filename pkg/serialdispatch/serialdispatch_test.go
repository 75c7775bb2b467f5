package serialdispatch_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aislelist/aislelist/pkg/serialdispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_SerializesExecution(t *testing.T) {
	d := serialdispatch.New(16)
	defer d.Close()

	var executing, overlaps int32
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := d.Dispatch(func() error {
				if atomic.AddInt32(&executing, 1) != 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(100 * time.Microsecond)
				atomic.AddInt32(&executing, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Zero(t, atomic.LoadInt32(&overlaps), "closures overlapped")
}

func TestDispatcher_InlineFastPath(t *testing.T) {
	d := serialdispatch.New(8)
	defer d.Close()

	count := 0
	for range 10 {
		require.NoError(t, d.Dispatch(func() error {
			count++
			return nil
		}))
	}
	// every call ran synchronously, so no atomic is needed
	assert.Equal(t, 10, count)
}

func TestDispatcher_QueueFallback(t *testing.T) {
	d := serialdispatch.New(2)
	defer d.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	slow := make(chan error, 1)
	go func() {
		slow <- d.Dispatch(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	var wg sync.WaitGroup
	var ran int32
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Dispatch(func() error {
				atomic.AddInt32(&ran, 1)
				return nil
			}))
		}()
	}
	close(release)
	wg.Wait()

	require.NoError(t, <-slow)
	assert.Equal(t, int32(5), atomic.LoadInt32(&ran))
}

func TestDispatcher_ReturnsClosureError(t *testing.T) {
	d := serialdispatch.New(1)
	defer d.Close()
	assert.EqualError(t, d.Dispatch(func() error { return assert.AnError }), assert.AnError.Error())
}

func TestDispatcher_Close(t *testing.T) {
	d := serialdispatch.New(4)
	require.NoError(t, d.Dispatch(func() error { return nil }))

	d.Close()
	d.Close()

	err := d.Dispatch(func() error {
		t.Error("closure ran after Close")
		return nil
	})
	require.ErrorIs(t, err, serialdispatch.ErrClosed)
}

func TestDispatcher_CloseRejectsQueued(t *testing.T) {
	d := serialdispatch.New(4)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = d.Dispatch(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	queued := make(chan error, 1)
	go func() {
		queued <- d.Dispatch(func() error { return nil })
	}()
	// give the second call time to land in the queue
	time.Sleep(20 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		d.Close()
		close(closed)
	}()

	select {
	case err := <-queued:
		require.ErrorIs(t, err, serialdispatch.ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("queued dispatch never returned")
	}
	close(release)
	<-closed
}
