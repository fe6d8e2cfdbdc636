// Package playback holds the loaded trace with its current position and the
// navigator that moves that position.
package playback

import (
	"github.com/jask/stepthrough/internal/trace"
)

// Observer receives store notifications synchronously, in subscription
// order. TraceChanged(nil) means the store was cleared.
type Observer interface {
	TraceChanged(t *trace.Trace)
	PositionChanged(pos int, step *trace.Step)
}

type subscription struct {
	id int
	o  Observer
}

// Store is the step sequence store: the current trace plus position. Only the
// Navigator in this package moves the position.
type Store struct {
	trace     *trace.Trace
	pos       int
	observers []subscription
	nextID    int
}

func NewStore() *Store {
	return &Store{}
}

// Load validates and installs t, resets the position to 0 and invalidates
// every observer's per-trace state before announcing the first step. A trace
// that fails validation leaves the store untouched.
func (s *Store) Load(t *trace.Trace) error {
	if err := trace.Validate(t); err != nil {
		return err
	}
	s.trace = t
	s.pos = 0
	s.publishTrace()
	s.publishPosition()
	return nil
}

// Clear unloads the current trace.
func (s *Store) Clear() {
	if s.trace == nil {
		return
	}
	s.trace = nil
	s.pos = 0
	s.publishTrace()
}

// Subscribe registers o and returns a function that removes it.
func (s *Store) Subscribe(o Observer) func() {
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subscription{id: id, o: o})
	return func() {
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) Loaded() bool { return s.trace != nil }

func (s *Store) Trace() *trace.Trace { return s.trace }

func (s *Store) TotalSteps() int { return s.trace.Len() }

// Position is undefined (false) while no trace is loaded.
func (s *Store) Position() (int, bool) {
	if s.trace == nil {
		return 0, false
	}
	return s.pos, true
}

func (s *Store) CurrentStep() (*trace.Step, bool) {
	return s.trace.At(s.pos)
}

func (s *Store) setPosition(pos int) {
	if pos == s.pos {
		return
	}
	s.pos = pos
	s.publishPosition()
}

func (s *Store) publishTrace() {
	for _, sub := range s.snapshot() {
		sub.o.TraceChanged(s.trace)
	}
}

func (s *Store) publishPosition() {
	step, ok := s.CurrentStep()
	if !ok {
		return
	}
	for _, sub := range s.snapshot() {
		sub.o.PositionChanged(s.pos, step)
	}
}

func (s *Store) snapshot() []subscription {
	out := make([]subscription, len(s.observers))
	copy(out, s.observers)
	return out
}
