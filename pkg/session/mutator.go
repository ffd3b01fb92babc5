package session

import (
	"fmt"

	"github.com/teslashibe/go-capture/internal/log"
)

// Mutator applies exclusive, atomic swaps of inputs and outputs against the
// live session. Every swap runs as one closure on the session queue inside a
// Begin/Commit block, so no observer ever sees a half-applied configuration.
//
// Ordering invariant: detach of the previous handle strictly precedes attach
// of the next. When attach fails the previous handle stays detached; the
// capability is absent until the next configuration change corrects it.
type Mutator struct {
	q *Queue
	s Session
}

// NewMutator creates a mutator over the session and its queue.
func NewMutator(q *Queue, s Session) *Mutator {
	return &Mutator{q: q, s: s}
}

// SwapInput replaces prev with next. Either may be nil (pure attach or pure
// detach). Blocks until the swap has been applied on the session queue.
func (m *Mutator) SwapInput(prev, next Input) error {
	var err error
	m.q.DoWait(func() {
		m.s.BeginConfiguration()
		defer m.s.CommitConfiguration()

		if prev != nil {
			m.s.RemoveInput(prev)
		}
		if next == nil {
			return
		}
		if attachErr := m.s.AddInput(next); attachErr != nil {
			err = fmt.Errorf("%w: %s: %v", ErrUnableToAttachInput, next.Label(), attachErr)
		}
	})
	if err != nil {
		log.Component("session").Warn("input swap failed", "err", err)
	}
	return err
}

// SwapOutput replaces prev with next, same contract as SwapInput.
func (m *Mutator) SwapOutput(prev, next Output) error {
	var err error
	m.q.DoWait(func() {
		m.s.BeginConfiguration()
		defer m.s.CommitConfiguration()

		if prev != nil {
			m.s.RemoveOutput(prev)
		}
		if next == nil {
			return
		}
		if attachErr := m.s.AddOutput(next); attachErr != nil {
			err = fmt.Errorf("%w: %s: %v", ErrUnableToAttachOutput, next.Label(), attachErr)
		}
	})
	if err != nil {
		log.Component("session").Warn("output swap failed", "err", err)
	}
	return err
}
