// Package events provides the small generic pub/sub types used to fan state out of the
// timing engine and the coach to views and hosts.
package events

type subscription[L any] struct {
	id       uint64
	listener L
}

// registry keeps listeners in registration order. Not safe for concurrent use;
// owners guard it with their own lock.
type registry[L any] struct {
	subs   []subscription[L]
	nextID uint64
}

func (r *registry[L]) add(listener L) uint64 {
	id := r.nextID
	r.nextID++
	r.subs = append(r.subs, subscription[L]{id: id, listener: listener})
	return id
}

func (r *registry[L]) remove(id uint64) bool {
	for i, s := range r.subs {
		if s.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return true
		}
	}
	return false
}

// snapshot copies the listeners so they can be invoked outside the owner's lock
func (r *registry[L]) snapshot() []L {
	result := make([]L, len(r.subs))
	for i, s := range r.subs {
		result[i] = s.listener
	}
	return result
}

func (r *registry[L]) len() int {
	return len(r.subs)
}

// lastValue remembers the most recent notification for replay to late listeners
type lastValue[T any] struct {
	enabled bool
	set     bool
	value   T
}

func (l *lastValue[T]) store(v T) {
	if !l.enabled {
		return
	}
	l.value = v
	l.set = true
}

func (l *lastValue[T]) get() (T, bool) {
	return l.value, l.enabled && l.set
}
