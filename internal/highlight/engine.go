// Package highlight derives the emphasized entity from the current step and
// layers a transient hover override on top of it.
package highlight

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jask/stepthrough/internal/trace"
)

// DefaultFramePath locates the active call stack inside Step.Data.
const DefaultFramePath = "state.call_stack_state"

// Options configure an Engine.
type Options struct {
	// FramePath is a dot-separated path into Step.Data ending at the frame
	// list. The last path segment is also tried at the top level of Data.
	FramePath string
	// Sticky keeps a hover override across position changes.
	Sticky bool
}

// Engine holds the derived and hover ids; "" means none.
type Engine struct {
	path   []string
	sticky bool

	derived string
	hover   string
}

func New(opts Options) *Engine {
	path := strings.TrimSpace(opts.FramePath)
	if path == "" {
		path = DefaultFramePath
	}
	return &Engine{path: strings.Split(path, "."), sticky: opts.Sticky}
}

// PositionChanged re-derives the emphasized id from step and drops the hover
// override unless the engine is sticky.
func (e *Engine) PositionChanged(_ int, step *trace.Step) {
	frames := e.Frames(step)
	e.derived = ""
	if len(frames) > 0 {
		e.derived = frames[len(frames)-1]
	}
	if !e.sticky {
		e.hover = ""
	}
}

// TraceChanged clears both ids.
func (e *Engine) TraceChanged(*trace.Trace) {
	e.derived = ""
	e.hover = ""
}

func (e *Engine) HoverEnter(id string) { e.hover = id }

func (e *Engine) HoverLeave() { e.hover = "" }

// Effective returns the hover override when present, else the derived id.
func (e *Engine) Effective() (string, bool) {
	if e.hover != "" {
		return e.hover, true
	}
	return e.derived, e.derived != ""
}

func (e *Engine) Derived() string { return e.derived }

func (e *Engine) Hover() string { return e.hover }

// Frames returns the ids of the step's active frames, outermost first.
// Frames without an id are skipped.
func (e *Engine) Frames(step *trace.Step) []string {
	if step == nil {
		return nil
	}
	list, ok := lookup(step.Data, e.path)
	if !ok && len(e.path) > 1 {
		list, ok = lookup(step.Data, e.path[len(e.path)-1:])
	}
	if !ok {
		return nil
	}
	items, ok := list.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		frame, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := entityID(frame["id"]); ok {
			out = append(out, id)
		}
	}
	return out
}

func lookup(data map[string]any, path []string) (any, bool) {
	var cur any = data
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func entityID(v any) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	default:
		return fmt.Sprint(id), true
	}
}
