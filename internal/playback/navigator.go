package playback

import (
	"errors"
	"fmt"

	"github.com/jask/stepthrough/internal/trace"
)

// ErrOutOfRange is an internal contract violation: something asked the
// navigator to land outside the loaded trace.
var ErrOutOfRange = errors.New("step index out of range")

// Interceptor may claim a forward transition instead of letting it land.
type Interceptor interface {
	// Intercept reports whether target was claimed. A claimed target is
	// reached later through GotoAbsolute.
	Intercept(target int) bool
	// Cancel drops a pending interrupt without resolving it.
	Cancel()
	// Reset drops a pending interrupt and all accumulated per-trace state.
	Reset()
}

type noInterceptor struct{}

func (noInterceptor) Intercept(int) bool { return false }
func (noInterceptor) Cancel()            {}
func (noInterceptor) Reset()             {}

// Navigator is the playback state machine over a Store. Start and end are
// boundary conditions of the ready state, not separate states.
type Navigator struct {
	store       *Store
	interceptor Interceptor
	signaled    bool
	unsubscribe func()

	// OnCompletion runs when Advance is called on the last step.
	OnCompletion func()
}

func NewNavigator(store *Store, interceptor Interceptor) *Navigator {
	if interceptor == nil {
		interceptor = noInterceptor{}
	}
	n := &Navigator{store: store, interceptor: interceptor}
	n.unsubscribe = store.Subscribe(n)
	return n
}

// Detach stops the navigator observing its store.
func (n *Navigator) Detach() {
	if n.unsubscribe != nil {
		n.unsubscribe()
		n.unsubscribe = nil
	}
}

// Advance moves one step forward unless the interceptor claims the target.
// On the last step it signals completion and leaves the position alone.
func (n *Navigator) Advance() {
	pos, ok := n.store.Position()
	if !ok {
		return
	}
	last := n.store.TotalSteps() - 1
	if pos >= last {
		n.signaled = true
		if n.OnCompletion != nil {
			n.OnCompletion()
		}
		return
	}
	target := pos + 1
	if n.interceptor.Intercept(target) {
		return
	}
	n.store.setPosition(target)
}

// Retreat moves one step back. It never triggers interception; a pending
// question is cancelled first.
func (n *Navigator) Retreat() {
	pos, ok := n.store.Position()
	if !ok || pos == 0 {
		return
	}
	n.interceptor.Cancel()
	n.store.setPosition(pos - 1)
}

// Reset returns to the first step and clears the interceptor's state.
func (n *Navigator) Reset() {
	n.interceptor.Reset()
	n.signaled = false
	if !n.store.Loaded() {
		return
	}
	n.store.setPosition(0)
}

// JumpToEnd lands on the last step directly, bypassing interception.
func (n *Navigator) JumpToEnd() {
	if !n.store.Loaded() {
		return
	}
	n.interceptor.Cancel()
	n.store.setPosition(n.store.TotalSteps() - 1)
	n.signaled = false
}

// GotoAbsolute is the landing callback for a resolved interrupt.
func (n *Navigator) GotoAbsolute(index int) error {
	total := n.store.TotalSteps()
	if !n.store.Loaded() || index < 0 || index >= total {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrOutOfRange, index, total)
	}
	n.store.setPosition(index)
	return nil
}

// IsComplete is derived from the current step on every call.
func (n *Navigator) IsComplete() bool {
	step, ok := n.store.CurrentStep()
	return ok && step.IsComplete()
}

// CompletionSignaled reports whether the last Advance hit the end of the
// trace with no position change since.
func (n *Navigator) CompletionSignaled() bool { return n.signaled }

func (n *Navigator) TraceChanged(*trace.Trace) { n.signaled = false }

func (n *Navigator) PositionChanged(int, *trace.Step) { n.signaled = false }
