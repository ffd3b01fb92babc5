// Package observe provides replay-latest observable values.
//
// The orchestrator publishes state (running flag, config result, status) that
// late subscribers still need: a new consumer must see the current value
// immediately, then every change in order. Slow consumers never block a
// publisher; they skip intermediate values and always converge on the latest.
package observe

import "sync"

// Value is a thread-safe observable holding the latest published value.
type Value[T any] struct {
	mu   sync.Mutex
	v    T
	set  bool
	subs map[int]chan T
	next int
}

// NewValue creates an empty Value. Get returns false until the first Set.
func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int]chan T)}
}

// Set publishes a new value to all subscribers and retains it for late ones.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.v = val
	v.set = true
	for _, ch := range v.subs {
		push(ch, val)
	}
}

// Get returns the latest value and whether one has been published.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.v, v.set
}

// Subscribe registers a new subscriber. If a value has already been published
// the channel carries it immediately. The returned cleanup must be called when
// the subscriber is done (e.g. on client disconnect).
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 8)
	v.mu.Lock()
	id := v.next
	v.next++
	v.subs[id] = ch
	if v.set {
		push(ch, v.v)
	}
	v.mu.Unlock()

	unsub := func() {
		v.mu.Lock()
		if _, ok := v.subs[id]; ok {
			delete(v.subs, id)
			close(ch)
		}
		v.mu.Unlock()
	}
	return ch, unsub
}

// push delivers without blocking. When the subscriber's buffer is full the
// oldest queued value is discarded so the channel always ends on the newest.
func push[T any](ch chan T, val T) {
	select {
	case ch <- val:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- val:
	default:
	}
}
