// Package eventstream defines a topic-keyed publish/subscribe contract used
// to fan location snapshots and display states out to listeners.
package eventstream

import "context"

// TopicFilter selects which topics a subscriber receives. A nil filter
// receives everything.
type TopicFilter[Topic any] func(Topic) bool

// Event pairs a payload with the topic it was published on.
type Event[Topic any, Payload any] struct {
	Topic   Topic
	Payload Payload
}

// SyncStreamer delivers published payloads to every subscriber whose filter
// accepts the topic.
//
//	streamer := memory.NewInMemorySyncStreamer[int64, *mlocation.Location]()
//	defer streamer.Shutdown()
//	events, err := streamer.Subscribe(ctx, eventstream.ForTopic(locationID))
//	streamer.Publish(locationID, snapshot)
type SyncStreamer[Topic any, Payload any] interface {
	// Subscribe returns a channel that is closed when ctx is done or the
	// streamer shuts down.
	Subscribe(ctx context.Context, filter TopicFilter[Topic]) (<-chan Event[Topic, Payload], error)

	// Publish never blocks. A subscriber whose buffer is full loses its
	// oldest queued events, so the most recent payload always arrives.
	Publish(topic Topic, payloads ...Payload)

	Shutdown()
}

// ForTopic returns a filter matching a single topic.
func ForTopic[Topic comparable](want Topic) TopicFilter[Topic] {
	return func(t Topic) bool { return t == want }
}
