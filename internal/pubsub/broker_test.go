package pubsub_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/themer/internal/pubsub"
	"github.com/zjrosen/themer/internal/theme"
)

func change(op theme.Op, name string) theme.Change {
	return theme.Change{ID: name + "-" + string(op), Op: op, Name: name}
}

func TestBroker_StampsSequence(t *testing.T) {
	b := pubsub.NewBroker[theme.Change]()
	defer b.Close()
	ch := b.Subscribe(context.Background())

	first := b.Publish(pubsub.CreatedEvent, change(theme.OpAdd, "dim-theme"))
	second := b.Publish(pubsub.UpdatedEvent, change(theme.OpSetDefault, "dim-theme"))
	require.Equal(t, uint64(1), first.Seq)
	require.Equal(t, uint64(2), second.Seq)

	got := pubsub.Collect(context.Background(), ch, 2)
	require.Len(t, got, 2)
	require.Equal(t, theme.OpAdd, got[0].Payload.Op)
	require.Equal(t, pubsub.UpdatedEvent, got[1].Type)
	require.False(t, got[1].Timestamp.IsZero())
	require.Zero(t, got[1].Missed(got[0]))
}

func TestBroker_FullSubscriberMissesEvents(t *testing.T) {
	var (
		mu    sync.Mutex
		drops []pubsub.Drop
	)
	b := pubsub.NewBroker[theme.Change](
		pubsub.WithBufferSize(2),
		pubsub.WithDropHandler(func(d pubsub.Drop) {
			mu.Lock()
			drops = append(drops, d)
			mu.Unlock()
		}),
	)
	defer b.Close()

	slow := b.Subscribe(context.Background())
	for _, name := range []string{"a-theme", "b-theme", "c-theme", "d-theme"} {
		b.Publish(pubsub.CreatedEvent, change(theme.OpAdd, name))
	}

	stats := b.Stats()
	require.Equal(t, pubsub.Stats{Subscribers: 1, Published: 4, Dropped: 2}, stats)
	mu.Lock()
	require.Len(t, drops, 2)
	require.Equal(t, uint64(3), drops[0].Seq)
	require.Equal(t, uint64(2), drops[1].Missed)
	mu.Unlock()

	// Draining makes room again; the gap shows in the sequence.
	got := pubsub.Collect(context.Background(), slow, 2)
	next := b.Publish(pubsub.DeletedEvent, change(theme.OpRemove, "a-theme"))
	got = append(got, pubsub.Collect(context.Background(), slow, 1)...)
	require.Len(t, got, 3)
	require.Equal(t, next.Seq, got[2].Seq)
	require.Equal(t, uint64(2), got[2].Missed(got[1]))
}

func TestBroker_CancelledSubscriberIsClosed(t *testing.T) {
	b := pubsub.NewBroker[theme.Change]()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	require.Equal(t, 1, b.Stats().Subscribers)

	cancel()
	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(time.Second):
		require.Fail(t, "subscription not closed after cancel")
	}
	require.Equal(t, 0, b.Stats().Subscribers)

	b.Publish(pubsub.UpdatedEvent, change(theme.OpUpdate, "dark-theme"))
	require.Zero(t, b.Stats().Dropped)
}

func TestBroker_Close(t *testing.T) {
	b := pubsub.NewBroker[theme.Change]()
	ch := b.Subscribe(context.Background())

	b.Close()
	b.Close()
	_, ok := <-ch
	require.False(t, ok)

	late := b.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok, "subscribing after Close yields a closed channel")

	require.Zero(t, b.Publish(pubsub.ReplacedEvent, change(theme.OpInit, "light-theme")).Seq)
	require.Equal(t, uint64(0), b.Stats().Published)
}

func TestBroker_ConcurrentPublishers(t *testing.T) {
	b := pubsub.NewBroker[theme.Change](pubsub.WithBufferSize(200))
	defer b.Close()
	ch := b.Subscribe(context.Background())

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				b.Publish(pubsub.UpdatedEvent, change(theme.OpUpdate, string(rune('a'+i))+"-theme"))
			}
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got := pubsub.Collect(ctx, ch, 100)
	require.Len(t, got, 100)

	seen := make(map[uint64]bool, len(got))
	for _, e := range got {
		seen[e.Seq] = true
	}
	require.Len(t, seen, 100, "sequence numbers are unique")
}
