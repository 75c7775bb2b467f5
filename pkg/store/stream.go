package store

import (
	"context"

	"github.com/aislelist/aislelist/pkg/eventstream"
	"github.com/aislelist/aislelist/pkg/model/mlocation"
)

// LocationStream sends the current snapshot of locationID and then a new
// one after every committed change to it, until ctx is done or the store
// closes. Snapshots are shared between subscribers and must not be
// modified.
func (s *Store) LocationStream(ctx context.Context, locationID int64) (<-chan *mlocation.Location, error) {
	ctx, cancel := context.WithCancel(ctx)

	// Subscribe first so a write landing between the read and the
	// subscription is not lost.
	events, err := s.snapshot.Subscribe(ctx, eventstream.ForTopic(locationID))
	if err != nil {
		cancel()
		return nil, err
	}
	initial, err := s.GetLocation(ctx, locationID)
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan *mlocation.Location, 1)
	go func() {
		defer cancel()
		defer close(out)

		send := func(loc *mlocation.Location) bool {
			select {
			case out <- loc:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if !send(initial) {
			return
		}
		for evt := range events {
			if !send(evt.Payload) {
				return
			}
		}
	}()
	return out, nil
}
