// Package prediction runs the question-before-reveal protocol: it claims a
// forward transition onto a prediction point, scores the user's answer and
// then lands navigation on the point's step.
package prediction

import (
	"errors"

	"go.uber.org/zap"

	"github.com/jask/stepthrough/internal/trace"
)

// ErrQuestionOpen rejects a mode toggle while a question is awaiting an answer.
var ErrQuestionOpen = errors.New("prediction question is open")

// Stats accumulate across one trace and reset when the trace changes.
type Stats struct {
	Total   int
	Correct int
}

// Accuracy is the correct fraction, 0 when nothing was answered.
func (s Stats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Outcome describes how one question was resolved.
type Outcome struct {
	Point   trace.PredictionPoint
	Choice  string
	Correct bool
	Skipped bool
}

// Engine is Idle when active is nil and AwaitingAnswer otherwise.
type Engine struct {
	gotoStep func(int) error
	log      *zap.Logger

	trace   *trace.Trace
	enabled bool
	active  *trace.PredictionPoint
	stats   Stats
	history []Outcome
}

// New builds an engine that lands resolved questions through gotoStep.
func New(gotoStep func(int) error, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{gotoStep: gotoStep, log: log, enabled: true}
}

// Intercept claims target when prediction mode is on and a point is keyed
// to it. While a question is open every forward transition stays claimed.
func (e *Engine) Intercept(target int) bool {
	if e.active != nil {
		return true
	}
	if !e.enabled {
		return false
	}
	p, ok := e.trace.PointAt(target)
	if !ok {
		return false
	}
	e.active = p
	e.log.Debug("prediction intercept", zap.Int("step", target), zap.String("question", p.Question))
	return true
}

// Answer scores choiceID against the open question, returns to Idle and
// reveals the step whether or not the answer was right.
func (e *Engine) Answer(choiceID string) (Outcome, bool) {
	if e.active == nil {
		return Outcome{}, false
	}
	p := e.active
	out := Outcome{Point: *p, Choice: choiceID, Correct: choiceID == p.CorrectAnswer}
	e.stats.Total++
	if out.Correct {
		e.stats.Correct++
	}
	e.resolve(out)
	return out, true
}

// Skip reveals the step without touching the stats.
func (e *Engine) Skip() (Outcome, bool) {
	if e.active == nil {
		return Outcome{}, false
	}
	out := Outcome{Point: *e.active, Skipped: true}
	e.resolve(out)
	return out, true
}

func (e *Engine) resolve(out Outcome) {
	e.active = nil
	e.history = append(e.history, out)
	if err := e.gotoStep(out.Point.StepIndex); err != nil {
		e.log.DPanic("prediction landed outside trace", zap.Int("step", out.Point.StepIndex), zap.Error(err))
	}
}

// Cancel drops the open question without scoring or navigating.
func (e *Engine) Cancel() {
	e.active = nil
}

// Reset returns to Idle and zeroes the stats.
func (e *Engine) Reset() {
	e.active = nil
	e.stats = Stats{}
	e.history = nil
}

// SetEnabled toggles prediction mode. Toggling while a question is open is
// rejected, the question has to be answered or skipped first.
func (e *Engine) SetEnabled(on bool) error {
	if e.active != nil {
		return ErrQuestionOpen
	}
	e.enabled = on
	return nil
}

func (e *Engine) Enabled() bool { return e.enabled }

func (e *Engine) Active() (*trace.PredictionPoint, bool) {
	return e.active, e.active != nil
}

func (e *Engine) Stats() Stats { return e.stats }

// History lists resolved questions in order.
func (e *Engine) History() []Outcome {
	out := make([]Outcome, len(e.history))
	copy(out, e.history)
	return out
}

// TraceChanged resets all per-trace state.
func (e *Engine) TraceChanged(t *trace.Trace) {
	e.trace = t
	e.Reset()
}

func (e *Engine) PositionChanged(int, *trace.Step) {}
