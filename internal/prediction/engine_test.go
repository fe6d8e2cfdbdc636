package prediction

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jask/stepthrough/internal/trace"
)

func coverageTrace() *trace.Trace {
	choices := []trace.Choice{{ID: "keep", Label: "Keep"}, {ID: "covered", Label: "Covered"}}
	return &trace.Trace{
		Steps: []trace.Step{{Type: "INITIAL"}, {Type: "EXAMINE"}, {Type: "DECISION"}, {Type: "EXAMINE"}, {Type: trace.TypeComplete}},
		Metadata: trace.Metadata{PredictionPoints: []trace.PredictionPoint{
			{StepIndex: 2, Question: "keep or covered?", Choices: choices, CorrectAnswer: "keep"},
		}},
	}
}

type landing struct {
	steps []int
	err   error
}

func (l *landing) gotoStep(i int) error {
	l.steps = append(l.steps, i)
	return l.err
}

func newEngine(t *testing.T) (*Engine, *landing) {
	t.Helper()
	l := &landing{}
	e := New(l.gotoStep, nil)
	e.TraceChanged(coverageTrace())
	return e, l
}

func TestInterceptOnlyAtPoints(t *testing.T) {
	e, _ := newEngine(t)
	if e.Intercept(1) {
		t.Fatal("no point at step 1")
	}
	if !e.Intercept(2) {
		t.Fatal("expected interception at step 2")
	}
	p, ok := e.Active()
	if !ok || p.StepIndex != 2 {
		t.Fatalf("active = %+v, %v", p, ok)
	}
	if !e.Intercept(2) {
		t.Fatal("open question keeps claiming forward transitions")
	}
}

func TestScoring(t *testing.T) {
	tests := []struct {
		name        string
		resolve     func(e *Engine) (Outcome, bool)
		wantStats   Stats
		wantCorrect bool
		wantSkipped bool
	}{
		{name: "correct", resolve: func(e *Engine) (Outcome, bool) { return e.Answer("keep") }, wantStats: Stats{Total: 1, Correct: 1}, wantCorrect: true},
		{name: "wrong", resolve: func(e *Engine) (Outcome, bool) { return e.Answer("covered") }, wantStats: Stats{Total: 1}},
		{name: "skip", resolve: func(e *Engine) (Outcome, bool) { return e.Skip() }, wantStats: Stats{}, wantSkipped: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, l := newEngine(t)
			e.Intercept(2)
			out, ok := tt.resolve(e)
			if !ok {
				t.Fatal("expected a resolved question")
			}
			if e.Stats() != tt.wantStats {
				t.Fatalf("stats = %+v, want %+v", e.Stats(), tt.wantStats)
			}
			if out.Correct != tt.wantCorrect || out.Skipped != tt.wantSkipped {
				t.Fatalf("outcome = %+v", out)
			}
			if len(l.steps) != 1 || l.steps[0] != 2 {
				t.Fatalf("landed on %v, want [2]", l.steps)
			}
			if _, open := e.Active(); open {
				t.Fatal("engine should be idle after resolving")
			}
			if len(e.History()) != 1 {
				t.Fatalf("history = %+v", e.History())
			}
		})
	}
}

func TestAnswerWhileIdleIsNoop(t *testing.T) {
	e, l := newEngine(t)
	if _, ok := e.Answer("keep"); ok {
		t.Fatal("answer while idle must not resolve")
	}
	if _, ok := e.Skip(); ok {
		t.Fatal("skip while idle must not resolve")
	}
	if e.Stats() != (Stats{}) || len(l.steps) != 0 {
		t.Fatalf("idle answer changed state: stats=%+v steps=%v", e.Stats(), l.steps)
	}
}

func TestDisabledModeNeverIntercepts(t *testing.T) {
	e, _ := newEngine(t)
	if err := e.SetEnabled(false); err != nil {
		t.Fatal(err)
	}
	if e.Intercept(2) {
		t.Fatal("disabled engine intercepted")
	}
}

func TestToggleRejectedWhileOpen(t *testing.T) {
	e, _ := newEngine(t)
	e.Intercept(2)
	if err := e.SetEnabled(false); !errors.Is(err, ErrQuestionOpen) {
		t.Fatalf("SetEnabled err = %v, want ErrQuestionOpen", err)
	}
	if !e.Enabled() {
		t.Fatal("rejected toggle must not change the mode")
	}
}

func TestTraceChangeResets(t *testing.T) {
	e, _ := newEngine(t)
	e.Intercept(2)
	e.Answer("keep")
	e.Intercept(2)
	e.TraceChanged(coverageTrace())
	if _, open := e.Active(); open || e.Stats() != (Stats{}) || len(e.History()) != 0 {
		t.Fatalf("trace change kept state: stats=%+v", e.Stats())
	}
	e.TraceChanged(nil)
	if e.Intercept(2) {
		t.Fatal("no trace, no points")
	}
}

func TestCancelDoesNotScore(t *testing.T) {
	e, l := newEngine(t)
	e.Intercept(2)
	e.Cancel()
	if _, open := e.Active(); open || e.Stats() != (Stats{}) || len(l.steps) != 0 {
		t.Fatal("cancel must drop the question silently")
	}
}

func TestBadLandingIsReportedLoudly(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &landing{err: errors.New("out of range")}
	e := New(l.gotoStep, zap.New(core))
	e.TraceChanged(coverageTrace())
	e.Intercept(2)
	e.Answer("keep")
	if logs.FilterMessage("prediction landed outside trace").Len() != 1 {
		t.Fatalf("expected a DPanic entry, got %v", logs.All())
	}
}

func TestAccuracy(t *testing.T) {
	if (Stats{}).Accuracy() != 0 {
		t.Fatal("empty stats accuracy should be 0")
	}
	if got := (Stats{Total: 4, Correct: 3}).Accuracy(); got != 0.75 {
		t.Fatalf("accuracy = %v", got)
	}
}
