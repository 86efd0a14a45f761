package feed

import (
	"sync"

	"github.com/elihudev/elihudroom/internal/app/models"
)

// snapshotBuffer bounds pending snapshots per subscription. A slow consumer
// loses intermediate states, never the latest one.
const snapshotBuffer = 16

// Subscription is one live feed registration. Obtained from Hub.Subscribe;
// callers must Unsubscribe when done.
type Subscription struct {
	hub     *Hub
	classID int64
	fn      func([]*models.Post)

	ch   chan []*models.Post
	done chan struct{}
	once sync.Once
}

// push queues a snapshot for delivery. When the buffer is full the oldest
// pending snapshot is dropped in favor of the new one.
func (s *Subscription) push(snapshot []*models.Post) {
	for {
		select {
		case <-s.done:
			return
		case s.ch <- snapshot:
			return
		default:
		}

		select {
		case <-s.ch:
		default:
		}
	}
}

// run delivers snapshots in order until the subscription is cancelled.
// A snapshot still in flight when Unsubscribe is called is discarded here
// rather than delivered late.
func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case snapshot := <-s.ch:
			select {
			case <-s.done:
				return
			default:
			}
			s.fn(snapshot)
		}
	}
}

// Done is closed when the subscription is cancelled, whether by Unsubscribe
// or by the hub closing the whole class.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Unsubscribe stops all future deliveries. It is idempotent: calling it more
// than once is safe and has no further effect.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		s.hub.remove(s)
	})
}
