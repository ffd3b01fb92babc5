package observe

import "sync"

// Notifier is an edge-triggered signal stream with no retained value.
// Used for events that only matter while someone is listening, like the
// device's subject-area-changed notification.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan struct{})}
}

// Notify signals all current subscribers. Subscribers that already have a
// pending signal are not queued a second one; the signal is a level, not a count.
func (n *Notifier) Notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a subscriber and returns its channel plus a cleanup func.
func (n *Notifier) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = ch
	n.mu.Unlock()

	unsub := func() {
		n.mu.Lock()
		if _, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, unsub
}
