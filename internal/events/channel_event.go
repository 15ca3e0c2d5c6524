package events

import "sync"

// Overflow decides what a ChannelEvent does when a listener's buffer is full
type Overflow int

const (
	// DropNewest skips the value being sent; the listener keeps what it has buffered
	DropNewest Overflow = iota
	// DropOldest discards one buffered value to make room, so slow readers always see
	// the most recent state
	DropOldest
)

// ChannelEvent sends each notified value to registered channels. Sends never block.
type ChannelEvent[T any] struct {
	mu        sync.RWMutex
	listeners registry[chan T]
	last      lastValue[T]
	overflow  Overflow
}

// NewChannelEvent creates an event that skips full listeners. With replayLast set, a
// channel registered after the first Notify receives the latest value straight away.
func NewChannelEvent[T any](replayLast bool) *ChannelEvent[T] {
	return NewChannelEventWithOverflow[T](replayLast, DropNewest)
}

// NewChannelEventWithOverflow creates an event with an explicit overflow policy
func NewChannelEventWithOverflow[T any](replayLast bool, overflow Overflow) *ChannelEvent[T] {
	return &ChannelEvent[T]{last: lastValue[T]{enabled: replayLast}, overflow: overflow}
}

// Listen registers ch and returns a func that unregisters it. DropOldest needs to read
// from the channel, so it takes a bidirectional channel.
func (e *ChannelEvent[T]) Listen(ch chan T) func() {
	if ch == nil {
		panic("ChannelEvent: channel cannot be nil")
	}

	e.mu.Lock()
	id := e.listeners.add(ch)
	last, replay := e.last.get()
	e.mu.Unlock()

	if replay {
		e.send(ch, last)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			e.listeners.remove(id)
			e.mu.Unlock()
		})
	}
}

// Notify sends value to every registered channel
func (e *ChannelEvent[T]) Notify(value T) {
	e.mu.Lock()
	e.last.store(value)
	channels := e.listeners.snapshot()
	e.mu.Unlock()

	for _, ch := range channels {
		e.send(ch, value)
	}
}

func (e *ChannelEvent[T]) send(ch chan T, value T) {
	select {
	case ch <- value:
		return
	default:
	}
	if e.overflow != DropOldest {
		return
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- value:
	default:
	}
}

// ListenerCount returns the number of registered channels
func (e *ChannelEvent[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.listeners.len()
}
