// Package input routes key events through a priority-ordered set of
// handlers shared by independent UI regions.
package input

import (
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Priority tiers used by the shortcut bindings. Higher wins.
const (
	TierPlayback   = 1
	TierModal      = 10
	TierPrediction = 20
)

// Target describes the element an event originated from.
type Target struct {
	// TextEntry is set while a text input owns the keyboard.
	TextEntry bool
	Name      string
}

// Event is one raw key event plus its origin.
type Event struct {
	Key    tea.KeyMsg
	Target Target
}

// KeyName is the bubbletea name of the pressed key ("right", "ctrl+r", "G").
func (e Event) KeyName() string { return e.Key.String() }

// Handler returns true when it consumed the event.
type Handler func(Event) bool

// HandlerFault reports a handler that panicked while handling an event.
type HandlerFault struct {
	ID       string
	Priority int
	Key      string
	Value    any
}

func (f *HandlerFault) Error() string {
	return fmt.Sprintf("input handler %q (priority %d) failed on %q: %v", f.ID, f.Priority, f.Key, f.Value)
}

type entry struct {
	id       string
	priority int
	seq      uint64
	handler  Handler
}

// Router is not safe for concurrent use; register, unregister and dispatch
// all run on the event loop.
type Router struct {
	entries map[string]entry
	seq     uint64
	log     *zap.Logger

	// OnFault observes handler faults after they are logged.
	OnFault func(*HandlerFault)
}

func NewRouter(log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{entries: make(map[string]entry), log: log}
}

// Registration is the scoped handle for one registered handler.
type Registration struct {
	router *Router
	id     string
	seq    uint64
}

// Register adds h under id. Registering an id again replaces the previous
// handler and moves it behind every existing handler of equal priority.
func (r *Router) Register(id string, priority int, h Handler) *Registration {
	r.seq++
	r.entries[id] = entry{id: id, priority: priority, seq: r.seq, handler: h}
	return &Registration{router: r, id: id, seq: r.seq}
}

// Unregister removes whatever is registered under id.
func (r *Router) Unregister(id string) {
	delete(r.entries, id)
}

// Close unregisters the handle's handler. It is idempotent and leaves a
// newer registration under the same id in place.
func (g *Registration) Close() {
	if g == nil || g.router == nil {
		return
	}
	if e, ok := g.router.entries[g.id]; ok && e.seq == g.seq {
		delete(g.router.entries, g.id)
	}
	g.router = nil
}

// Active reports whether the handle still owns its registration.
func (g *Registration) Active() bool {
	if g == nil || g.router == nil {
		return false
	}
	e, ok := g.router.entries[g.id]
	return ok && e.seq == g.seq
}

// Registered reports whether id currently has a handler.
func (r *Router) Registered(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Len is the number of registered handlers.
func (r *Router) Len() int { return len(r.entries) }

// Dispatch offers ev to handlers from highest priority down, ties in
// registration order, and stops at the first that consumes it. Events from a
// text entry never reach a handler.
func (r *Router) Dispatch(ev Event) bool {
	if ev.Target.TextEntry {
		return false
	}
	for _, e := range r.ordered() {
		if r.invoke(e, ev) {
			return true
		}
	}
	return false
}

func (r *Router) ordered() []entry {
	out := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority > out[j].priority
		}
		return out[i].seq < out[j].seq
	})
	return out
}

func (r *Router) invoke(e entry, ev Event) (consumed bool) {
	defer func() {
		if v := recover(); v != nil {
			fault := &HandlerFault{ID: e.id, Priority: e.priority, Key: ev.KeyName(), Value: v}
			r.log.Error("input handler fault", zap.String("handler", e.id), zap.Int("priority", e.priority), zap.String("key", fault.Key), zap.Any("panic", v))
			if r.OnFault != nil {
				r.OnFault(fault)
			}
			consumed = false
		}
	}()
	return e.handler(ev)
}
