package observe

import (
	"testing"
	"time"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
		panic("unreachable")
	}
}

func TestValue_ReplaysLatestOnSubscribe(t *testing.T) {
	v := NewValue[int]()
	v.Set(1)
	v.Set(2)

	ch, unsub := v.Subscribe()
	defer unsub()
	if got := recv(t, ch); got != 2 {
		t.Errorf("replayed %d, want 2", got)
	}
}

func TestValue_EmptyUntilFirstSet(t *testing.T) {
	v := NewValue[string]()
	if _, ok := v.Get(); ok {
		t.Error("Get reported a value before any Set")
	}

	ch, unsub := v.Subscribe()
	defer unsub()
	select {
	case got := <-ch:
		t.Errorf("got %q before any Set", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestValue_DeliversChangesInOrder(t *testing.T) {
	v := NewValue[int]()
	ch, unsub := v.Subscribe()
	defer unsub()

	v.Set(1)
	v.Set(2)
	v.Set(3)

	prev := 0
	for i := 0; i < 3; i++ {
		got := recv(t, ch)
		if got <= prev {
			t.Fatalf("out of order: %d after %d", got, prev)
		}
		prev = got
	}
}

func TestValue_SlowSubscriberConvergesOnNewest(t *testing.T) {
	v := NewValue[int]()
	ch, unsub := v.Subscribe()
	defer unsub()

	// Overrun the buffer without draining. Intermediate values may drop but
	// the final read must be the newest published value.
	for i := 1; i <= 100; i++ {
		v.Set(i)
	}

	last := 0
	for {
		select {
		case got := <-ch:
			last = got
			continue
		default:
		}
		break
	}
	if last != 100 {
		t.Errorf("converged on %d, want 100", last)
	}
}

func TestValue_UnsubscribeStopsDelivery(t *testing.T) {
	v := NewValue[int]()
	ch, unsub := v.Subscribe()
	v.Set(1)
	recv(t, ch)

	unsub()
	unsub() // idempotent
	v.Set(2)

	// Channel is closed after unsubscribe; no value 2 arrives.
	if got, ok := <-ch; ok {
		t.Errorf("received %d after unsubscribe", got)
	}
}

func TestValue_IndependentSubscribers(t *testing.T) {
	v := NewValue[int]()
	a, unsubA := v.Subscribe()
	b, unsubB := v.Subscribe()
	defer unsubA()
	defer unsubB()

	v.Set(7)
	if got := recv(t, a); got != 7 {
		t.Errorf("a got %d", got)
	}
	if got := recv(t, b); got != 7 {
		t.Errorf("b got %d", got)
	}
}

func TestStream_NoReplay(t *testing.T) {
	s := NewStream[int]()
	s.Publish(1)

	ch, unsub := s.Subscribe()
	defer unsub()
	select {
	case got := <-ch:
		t.Errorf("got %d published before subscribe", got)
	case <-time.After(50 * time.Millisecond):
	}

	s.Publish(2)
	if got := recv(t, ch); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestNotifier_CoalescesSignals(t *testing.T) {
	n := NewNotifier()
	ch, unsub := n.Subscribe()
	defer unsub()

	n.Notify()
	n.Notify()
	n.Notify()

	recv(t, ch)
	// Signals coalesce; at most one more can be pending.
	select {
	case <-ch:
	case <-time.After(50 * time.Millisecond):
	}
	select {
	case <-ch:
		t.Error("more than two signals pending after coalescing")
	case <-time.After(50 * time.Millisecond):
	}
}
