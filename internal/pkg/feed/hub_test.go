package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elihudev/elihudroom/internal/app/models"
)

type recorder struct {
	ch chan []*models.Post
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan []*models.Post, snapshotBuffer)}
}

func (r *recorder) record(posts []*models.Post) {
	r.ch <- posts
}

func (r *recorder) next(t *testing.T) []*models.Post {
	t.Helper()
	select {
	case snap := <-r.ch:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func (r *recorder) expectNone(t *testing.T) {
	t.Helper()
	select {
	case snap := <-r.ch:
		t.Fatalf("unexpected snapshot with %d posts", len(snap))
	case <-time.After(100 * time.Millisecond):
	}
}

func post(id int64, titulo string) *models.Post {
	return &models.Post{ID: id, Titulo: titulo, FechaCreacion: time.Now()}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	rec := newRecorder()

	sub := hub.Subscribe(1, []*models.Post{post(1, "hola")}, rec.record)
	defer sub.Unsubscribe()

	snap := rec.next(t)
	require.Len(t, snap, 1)
	assert.Equal(t, "hola", snap[0].Titulo)
}

func TestPublishFansOutPerClass(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	recA1, recA2, recB := newRecorder(), newRecorder(), newRecorder()

	subA1 := hub.Subscribe(1, nil, recA1.record)
	defer subA1.Unsubscribe()
	subA2 := hub.Subscribe(1, nil, recA2.record)
	defer subA2.Unsubscribe()
	subB := hub.Subscribe(2, nil, recB.record)
	defer subB.Unsubscribe()

	assert.Empty(t, recA1.next(t))
	assert.Empty(t, recA2.next(t))
	assert.Empty(t, recB.next(t))

	hub.Publish(1, []*models.Post{post(1, "solo clase 1")})

	require.Len(t, recA1.next(t), 1)
	require.Len(t, recA2.next(t), 1)
	recB.expectNone(t)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	hub.Publish(42, []*models.Post{post(1, "nadie escucha")})
	assert.Equal(t, 0, hub.SubscriberCount(42))
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	rec := newRecorder()

	sub := hub.Subscribe(1, nil, rec.record)
	assert.Empty(t, rec.next(t))
	assert.Equal(t, 1, hub.SubscriberCount(1))

	sub.Unsubscribe()
	assert.Equal(t, 0, hub.SubscriberCount(1))

	hub.Publish(1, []*models.Post{post(1, "tarde")})
	rec.expectNone(t)

	// Idempotent
	sub.Unsubscribe()
}

func TestCloseClassCancelsAllSubscriptions(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	rec1, rec2 := newRecorder(), newRecorder()

	hub.Subscribe(1, nil, rec1.record)
	hub.Subscribe(1, nil, rec2.record)
	assert.Empty(t, rec1.next(t))
	assert.Empty(t, rec2.next(t))

	hub.CloseClass(1)
	assert.Equal(t, 0, hub.SubscriberCount(1))

	hub.Publish(1, []*models.Post{post(1, "clase borrada")})
	rec1.expectNone(t)
	rec2.expectNone(t)
}

func TestDoneClosesWithSubscription(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	sub := hub.Subscribe(1, nil, func([]*models.Post) {})
	select {
	case <-sub.Done():
		t.Fatal("Done closed before cancellation")
	default:
	}

	sub.Unsubscribe()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Unsubscribe")
	}

	// CloseClass cancels subscriptions the same way
	closed := hub.Subscribe(2, nil, func([]*models.Post) {})
	hub.CloseClass(2)
	select {
	case <-closed.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after CloseClass")
	}
}

func TestInitialSnapshotNeverArrivesAfterNewerOne(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	newer := []*models.Post{post(1, "publicado")}

	// Race Publish against Subscribe: whatever the interleaving, a
	// subscriber must never see the published snapshot and then the stale
	// initial one.
	for i := 0; i < 200; i++ {
		rec := newRecorder()
		started := make(chan struct{})
		published := make(chan struct{})
		go func() {
			<-started
			hub.Publish(1, newer)
			close(published)
		}()

		close(started)
		sub := hub.Subscribe(1, nil, rec.record)
		<-published

		first := rec.next(t)
		if len(first) == 1 {
			// The published snapshot came first, so the initial one must
			// have been dropped, not delivered late.
			select {
			case second := <-rec.ch:
				assert.Len(t, second, 1, "stale initial snapshot delivered after a newer one")
			case <-time.After(50 * time.Millisecond):
			}
		}
		sub.Unsubscribe()
	}
}

func TestSlowConsumerKeepsLatestSnapshot(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	release := make(chan struct{})
	delivered := make(chan []*models.Post, snapshotBuffer*4)
	sub := hub.Subscribe(1, nil, func(posts []*models.Post) {
		<-release
		delivered <- posts
	})
	defer sub.Unsubscribe()

	// Overrun the buffer while the consumer is blocked on the initial snapshot
	total := snapshotBuffer * 3
	for i := 1; i <= total; i++ {
		hub.Publish(1, []*models.Post{post(int64(i), fmt.Sprintf("snapshot %d", i))})
	}
	close(release)

	var last []*models.Post
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-delivered:
			last = snap
		case <-deadline:
			t.Fatal("timed out waiting for final snapshot")
		}
		if len(last) == 1 && last[0].ID == int64(total) {
			return
		}
	}
}
