package pubsub

import "context"

// Listen calls fn for every event received on ch until ctx is cancelled or
// the channel is closed. It blocks; run it in its own goroutine when the
// caller has other work.
func Listen[T any](ctx context.Context, ch <-chan Event[T], fn func(Event[T])) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			fn(event)
		}
	}
}

// Collect drains up to n events from ch, stopping early when ctx is done or
// the channel closes.
func Collect[T any](ctx context.Context, ch <-chan Event[T], n int) []Event[T] {
	out := make([]Event[T], 0, n)
	for len(out) < n {
		select {
		case <-ctx.Done():
			return out
		case event, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, event)
		}
	}
	return out
}
