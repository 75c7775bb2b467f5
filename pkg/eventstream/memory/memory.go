// Package memory is the in-process eventstream.SyncStreamer.
//
// Payloads here are whole snapshots or display states, so only the newest
// one matters to a lagging reader. A subscriber whose buffer is full loses
// its oldest queued event to make room; Publish never waits for readers.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aislelist/aislelist/pkg/eventstream"
)

const defaultSubscriberBuffer = 256

var ErrStreamerClosed = errors.New("eventstream: streamer closed")

type subscriber[Topic any, Payload any] struct {
	filter eventstream.TopicFilter[Topic]

	mu     sync.Mutex
	ch     chan eventstream.Event[Topic, Payload]
	closed bool
}

// send enqueues evt, evicting from the head until it fits. Sends are
// serialized by mu and readers only ever remove, so the loop ends.
func (s *subscriber[Topic, Payload]) send(evt eventstream.Event[Topic, Payload]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- evt:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *subscriber[Topic, Payload]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

type streamer[Topic any, Payload any] struct {
	buffer int

	mu     sync.Mutex
	subs   map[*subscriber[Topic, Payload]]struct{}
	closed bool
}

// NewInMemorySyncStreamer creates an in-process streamer.
func NewInMemorySyncStreamer[Topic any, Payload any]() eventstream.SyncStreamer[Topic, Payload] {
	return NewInMemorySyncStreamerSize[Topic, Payload](defaultSubscriberBuffer)
}

// NewInMemorySyncStreamerSize is NewInMemorySyncStreamer with an explicit
// per-subscriber buffer.
func NewInMemorySyncStreamerSize[Topic any, Payload any](buffer int) eventstream.SyncStreamer[Topic, Payload] {
	if buffer < 1 {
		buffer = 1
	}
	return &streamer[Topic, Payload]{
		buffer: buffer,
		subs:   make(map[*subscriber[Topic, Payload]]struct{}),
	}
}

func (s *streamer[Topic, Payload]) Subscribe(
	ctx context.Context,
	filter eventstream.TopicFilter[Topic],
) (<-chan eventstream.Event[Topic, Payload], error) {
	if filter == nil {
		filter = func(Topic) bool { return true }
	}
	sub := &subscriber[Topic, Payload]{
		filter: filter,
		ch:     make(chan eventstream.Event[Topic, Payload], s.buffer),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStreamerClosed
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.unsubscribe(sub)
	}()
	return sub.ch, nil
}

func (s *streamer[Topic, Payload]) Publish(topic Topic, payloads ...Payload) {
	if len(payloads) == 0 {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	targets := make([]*subscriber[Topic, Payload], 0, len(s.subs))
	for sub := range s.subs {
		if sub.filter(topic) {
			targets = append(targets, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range targets {
		for _, p := range payloads {
			sub.send(eventstream.Event[Topic, Payload]{Topic: topic, Payload: p})
		}
	}
}

func (s *streamer[Topic, Payload]) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for sub := range subs {
		sub.close()
	}
}

func (s *streamer[Topic, Payload]) unsubscribe(sub *subscriber[Topic, Payload]) {
	s.mu.Lock()
	if s.subs != nil {
		delete(s.subs, sub)
	}
	s.mu.Unlock()
	sub.close()
}
