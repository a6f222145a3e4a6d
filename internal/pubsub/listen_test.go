package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListen_StopsWhenBrokerCloses(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())

	broker.Publish(CreatedEvent, "a")
	broker.Publish(UpdatedEvent, "b")

	var got []string
	done := make(chan struct{})
	go func() {
		Listen(context.Background(), ch, func(e Event[string]) {
			got = append(got, string(e.Type)+":"+e.Payload)
		})
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	broker.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "Listen did not return after Close")
	}
	require.Equal(t, []string{"created:a", "updated:b"}, got)
}

func TestListen_StopsOnContextCancel(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		Listen(ctx, ch, func(Event[int]) {})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "Listen did not return after cancel")
	}
}

func TestCollect(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	for i := range 3 {
		broker.Publish(ReplacedEvent, i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	events := Collect(ctx, ch, 5)
	require.Len(t, events, 3, "collect returns what arrived before the deadline")
	require.Equal(t, 2, events[2].Payload)
}
