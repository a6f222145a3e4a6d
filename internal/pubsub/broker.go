package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

// Broker fans events out to every live subscription. Publishing never
// blocks: a subscriber whose buffer is full misses the event, and the miss
// is counted and reported to the drop handler. Every event carries a
// sequence number, so a subscriber can tell from a gap that it missed some.
type Broker[T any] struct {
	mu     sync.RWMutex
	subs   map[*subscription[T]]struct{}
	closed bool
	nextID int

	bufferSize int
	onDrop     func(Drop)

	seq       atomic.Uint64
	published atomic.Uint64
	dropped   atomic.Uint64
}

type subscription[T any] struct {
	id      int
	ch      chan Event[T]
	dropped atomic.Uint64
}

// Drop describes an event a subscriber missed.
type Drop struct {
	Subscriber int
	Type       EventType
	Seq        uint64
	// Missed is the subscriber's running total of missed events.
	Missed uint64
}

// Stats is a point-in-time view of a broker.
type Stats struct {
	Subscribers int
	Published   uint64
	Dropped     uint64
}

// Option configures a Broker.
type Option func(*brokerOptions)

type brokerOptions struct {
	bufferSize int
	onDrop     func(Drop)
}

// WithBufferSize sets how many undelivered events each subscriber may hold.
func WithBufferSize(n int) Option {
	return func(o *brokerOptions) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithDropHandler calls fn for every event a subscriber misses. fn runs on
// the publishing goroutine after the broker lock is released.
func WithDropHandler(fn func(Drop)) Option {
	return func(o *brokerOptions) { o.onDrop = fn }
}

// NewBroker returns an open broker.
func NewBroker[T any](opts ...Option) *Broker[T] {
	o := brokerOptions{bufferSize: defaultBufferSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Broker[T]{
		subs:       make(map[*subscription[T]]struct{}),
		bufferSize: o.bufferSize,
		onDrop:     o.onDrop,
	}
}

// Subscribe returns a channel receiving every event published after the
// call. The channel is closed when ctx ends or the broker is closed;
// subscribing to a closed broker yields an already closed channel.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	b.nextID++
	sub := &subscription[T]{id: b.nextID, ch: make(chan Event[T], b.bufferSize)}
	b.subs[sub] = struct{}{}

	go func() {
		<-ctx.Done()
		b.unsubscribe(sub)
	}()
	return sub.ch
}

func (b *Broker[T]) unsubscribe(sub *subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Publish stamps payload with the next sequence number and offers it to
// every subscriber. It returns the stamped event; publishing to a closed
// broker returns the zero Event.
func (b *Broker[T]) Publish(eventType EventType, payload T) Event[T] {
	var drops []Drop

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return Event[T]{}
	}
	event := Event[T]{
		Seq:       b.seq.Add(1),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	for sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			missed := sub.dropped.Add(1)
			b.dropped.Add(1)
			if b.onDrop != nil {
				drops = append(drops, Drop{Subscriber: sub.id, Type: eventType, Seq: event.Seq, Missed: missed})
			}
		}
	}
	b.mu.RUnlock()
	b.published.Add(1)

	for _, d := range drops {
		b.onDrop(d)
	}
	return event
}

// Close closes every subscriber channel. Later publishes are discarded.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}

// Stats reports subscriber and delivery counts.
func (b *Broker[T]) Stats() Stats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return Stats{
		Subscribers: n,
		Published:   b.published.Load(),
		Dropped:     b.dropped.Load(),
	}
}
