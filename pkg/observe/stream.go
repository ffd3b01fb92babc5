package observe

import "sync"

// Stream is a fan-out broadcast without replay: subscribers only see values
// published after they subscribed. Used for event streams where history is
// meaningless, like configuration errors.
type Stream[T any] struct {
	mu   sync.Mutex
	subs map[int]chan T
	next int
}

// NewStream creates an empty Stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{subs: make(map[int]chan T)}
}

// Publish delivers val to all current subscribers, never blocking.
func (s *Stream[T]) Publish(val T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		push(ch, val)
	}
}

// Subscribe registers a subscriber and returns its channel plus a cleanup func.
func (s *Stream[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 8)
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	unsub := func() {
		s.mu.Lock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, unsub
}
