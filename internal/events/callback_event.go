package events

import "sync"

// CallbackEvent delivers each notified value to its callbacks, in the order they registered.
// Callbacks run on the notifying goroutine, outside the event's lock, so a callback may
// listen or unregister without deadlocking.
type CallbackEvent[T any] struct {
	mu        sync.RWMutex
	listeners registry[func(T)]
	last      lastValue[T]
}

// NewCallbackEvent creates an event. With replayLast set, a listener registered after the
// first Notify is called straight away with the latest value.
func NewCallbackEvent[T any](replayLast bool) *CallbackEvent[T] {
	return &CallbackEvent[T]{last: lastValue[T]{enabled: replayLast}}
}

// Listen registers callback and returns a func that unregisters it. The returned func
// is safe to call more than once.
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("CallbackEvent: callback cannot be nil")
	}

	e.mu.Lock()
	id := e.listeners.add(callback)
	last, replay := e.last.get()
	e.mu.Unlock()

	if replay {
		callback(last)
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

// Notify calls every registered callback with value
func (e *CallbackEvent[T]) Notify(value T) {
	e.mu.Lock()
	e.last.store(value)
	callbacks := e.listeners.snapshot()
	e.mu.Unlock()

	for _, callback := range callbacks {
		callback(value)
	}
}

// Last returns the latest notified value when replay is enabled
func (e *CallbackEvent[T]) Last() (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last.get()
}

// ListenerCount returns the number of registered callbacks
func (e *CallbackEvent[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.listeners.len()
}
