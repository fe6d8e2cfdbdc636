package player

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/stepthrough/internal/prediction"
	"github.com/jask/stepthrough/internal/trace"
)

func fiveStepTrace() *trace.Trace {
	frames := func(ids ...string) map[string]any {
		list := make([]any, 0, len(ids))
		for _, id := range ids {
			list = append(list, map[string]any{"id": id})
		}
		return map[string]any{"state": map[string]any{"call_stack_state": list}}
	}
	return &trace.Trace{
		Steps: []trace.Step{
			{Type: "INITIAL", Data: frames()},
			{Type: "EXAMINING_INTERVAL", Data: frames("A")},
			{Type: "DECISION_MADE", Data: frames("A", "B")},
			{Type: "EXAMINING_INTERVAL", Data: frames("A")},
			{Type: trace.TypeComplete, Data: frames()},
		},
		Metadata: trace.Metadata{Algorithm: "interval-coverage", PredictionPoints: []trace.PredictionPoint{{
			StepIndex:     2,
			Question:      "keep or covered?",
			Choices:       []trace.Choice{{ID: "keep", Label: "Keep"}, {ID: "covered", Label: "Covered"}},
			CorrectAnswer: "keep",
		}}},
	}
}

func position(t *testing.T, p *Player) int {
	t.Helper()
	pos, ok := p.Position()
	require.True(t, ok, "expected a loaded trace")
	return pos
}

func TestEndToEndPredictionScenario(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.Load(fiveStepTrace()))
	require.Equal(t, 0, position(t, p))

	p.Advance()
	require.Equal(t, 1, position(t, p))

	p.Advance()
	require.Equal(t, 1, position(t, p), "advance onto a prediction point must be intercepted")
	point, open := p.ActivePrediction()
	require.True(t, open)
	require.Equal(t, 2, point.StepIndex)

	out, ok := p.PredictionAnswer("covered")
	require.True(t, ok)
	require.False(t, out.Correct)
	require.Equal(t, prediction.Stats{Total: 1, Correct: 0}, p.Stats())
	require.Equal(t, 2, position(t, p))

	hl, ok := p.EffectiveHighlight()
	require.True(t, ok)
	require.Equal(t, "B", hl)
}

func TestScoringVariantsAllRevealTheStep(t *testing.T) {
	tests := []struct {
		name    string
		resolve func(p *Player)
		want    prediction.Stats
	}{
		{name: "correct", resolve: func(p *Player) { p.PredictionAnswer("keep") }, want: prediction.Stats{Total: 1, Correct: 1}},
		{name: "wrong", resolve: func(p *Player) { p.PredictionAnswer("covered") }, want: prediction.Stats{Total: 1}},
		{name: "skip", resolve: func(p *Player) { p.PredictionSkip() }, want: prediction.Stats{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Options{})
			require.NoError(t, p.Load(fiveStepTrace()))
			p.Advance()
			p.Advance()
			tt.resolve(p)
			require.Equal(t, tt.want, p.Stats())
			require.Equal(t, 2, position(t, p))
			_, open := p.ActivePrediction()
			require.False(t, open)
		})
	}
}

func TestJumpToEndIgnoresPointAtLastStep(t *testing.T) {
	tr := fiveStepTrace()
	tr.Metadata.PredictionPoints[0].StepIndex = 4
	p := New(Options{})
	require.NoError(t, p.Load(tr))
	p.JumpToEnd()
	require.Equal(t, 4, position(t, p))
	_, open := p.ActivePrediction()
	require.False(t, open)
	require.True(t, p.IsComplete())
}

func TestResetTwiceEqualsOnce(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.Load(fiveStepTrace()))
	p.Advance()
	p.Advance()
	p.PredictionAnswer("keep")
	p.Advance()
	p.Advance()

	p.Reset()
	once := snapshot(t, p)
	p.Reset()
	require.Equal(t, once, snapshot(t, p))
	require.Equal(t, 0, once.pos)
	require.Equal(t, prediction.Stats{}, once.stats)
	require.False(t, once.open)
}

type state struct {
	pos   int
	stats prediction.Stats
	open  bool
}

func snapshot(t *testing.T, p *Player) state {
	_, open := p.ActivePrediction()
	return state{pos: position(t, p), stats: p.Stats(), open: open}
}

func TestCompletionSignal(t *testing.T) {
	completed := 0
	p := New(Options{DisablePrediction: true, OnCompletion: func() { completed++ }})
	require.NoError(t, p.Load(fiveStepTrace()))
	for i := 0; i < 4; i++ {
		p.Advance()
	}
	require.True(t, p.IsComplete())
	require.False(t, p.CompletionSignaled())
	p.Advance()
	require.Equal(t, 4, position(t, p))
	require.True(t, p.CompletionSignaled())
	require.Equal(t, 1, completed)
}

func TestTraceChangeResetsEverything(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.Load(fiveStepTrace()))
	p.Advance()
	p.Advance()
	p.PredictionAnswer("keep")
	p.HoverEnter("Z")

	require.NoError(t, p.Load(fiveStepTrace()))
	require.Equal(t, 0, position(t, p))
	require.Equal(t, prediction.Stats{}, p.Stats())
	_, ok := p.EffectiveHighlight()
	require.False(t, ok, "step 0 has no frames and hover must be cleared")
}

func TestInvalidLoadKeepsSession(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.Load(fiveStepTrace()))
	p.Advance()
	err := p.Load(&trace.Trace{Steps: []trace.Step{{}}})
	require.True(t, errors.Is(err, trace.ErrInvalidTrace))
	require.Equal(t, 1, position(t, p))
}

func TestHoverOverride(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.Load(fiveStepTrace()))
	p.Advance()
	p.HoverEnter("B")
	hl, _ := p.EffectiveHighlight()
	require.Equal(t, "B", hl)
	p.HoverLeave()
	hl, _ = p.EffectiveHighlight()
	require.Equal(t, "A", hl)
	require.Equal(t, []string{"A"}, p.Frames())
}

func TestToggleWhileQuestionOpenIsRejected(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.Load(fiveStepTrace()))
	p.Advance()
	p.Advance()
	require.ErrorIs(t, p.SetPredictionMode(false), prediction.ErrQuestionOpen)
	require.True(t, p.PredictionMode())
}

func TestIndependentPlayers(t *testing.T) {
	a, b := New(Options{}), New(Options{})
	require.NoError(t, a.Load(fiveStepTrace()))
	require.NoError(t, b.Load(fiveStepTrace()))
	a.Advance()
	require.Equal(t, 1, position(t, a))
	require.Equal(t, 0, position(t, b))
}

func TestDisposeMakesPlayerInert(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.Load(fiveStepTrace()))
	p.Dispose()
	p.Dispose()
	require.False(t, p.Loaded())
	p.Advance()
	require.ErrorIs(t, p.Load(fiveStepTrace()), ErrDisposed)
	require.False(t, p.Loaded())
}

func TestFixtureRoundTrip(t *testing.T) {
	f, err := os.Open("../trace/testdata/interval_coverage.json")
	require.NoError(t, err)
	defer f.Close()
	tr, err := trace.Decode(f)
	require.NoError(t, err)

	p := New(Options{})
	require.NoError(t, p.Load(tr))
	p.Advance()
	hl, _ := p.EffectiveHighlight()
	require.Equal(t, "call_0", hl)
	p.Advance()
	_, open := p.ActivePrediction()
	require.True(t, open)
	p.PredictionAnswer("keep")
	p.Advance()
	p.Advance()
	p.PredictionSkip()
	require.Equal(t, prediction.Stats{Total: 1, Correct: 1}, p.Stats())
	require.Len(t, p.History(), 2)
}
