// Package player owns one playback session: the step store, the navigator,
// the prediction engine and the highlight engine, wired together with an
// explicit lifecycle so several players can coexist.
package player

import (
	"errors"

	"go.uber.org/zap"

	"github.com/jask/stepthrough/internal/highlight"
	"github.com/jask/stepthrough/internal/playback"
	"github.com/jask/stepthrough/internal/prediction"
	"github.com/jask/stepthrough/internal/trace"
)

// ErrDisposed is returned by Load once Dispose has run.
var ErrDisposed = errors.New("player disposed")

type Options struct {
	// DisablePrediction starts with prediction mode off.
	DisablePrediction bool
	Highlight         highlight.Options
	Logger            *zap.Logger
	// OnCompletion runs when the user advances past the last step.
	OnCompletion func()
}

// Player is the surface rendering code is allowed to call.
type Player struct {
	store     *playback.Store
	nav       *playback.Navigator
	predict   *prediction.Engine
	highlight *highlight.Engine
	log       *zap.Logger
	unsubs    []func()
	disposed  bool
}

func New(opts Options) *Player {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	p := &Player{store: playback.NewStore(), log: log}
	p.predict = prediction.New(func(i int) error { return p.nav.GotoAbsolute(i) }, log.Named("prediction"))
	if opts.DisablePrediction {
		_ = p.predict.SetEnabled(false)
	}
	p.nav = playback.NewNavigator(p.store, p.predict)
	p.nav.OnCompletion = opts.OnCompletion
	p.highlight = highlight.New(opts.Highlight)
	p.unsubs = append(p.unsubs, p.store.Subscribe(p.predict), p.store.Subscribe(p.highlight))
	return p
}

// Load replaces the trace. Every engine's per-trace state is reset before
// the first step is announced.
func (p *Player) Load(t *trace.Trace) error {
	if p.disposed {
		p.log.Warn("load on disposed player")
		return ErrDisposed
	}
	if err := p.store.Load(t); err != nil {
		p.log.Warn("trace rejected", zap.Error(err))
		return err
	}
	p.log.Info("trace loaded", zap.String("algorithm", t.Metadata.Algorithm), zap.Int("steps", t.Len()), zap.Int("prediction_points", len(t.Metadata.PredictionPoints)))
	return nil
}

// Unload clears the trace; navigation becomes a no-op until the next Load.
func (p *Player) Unload() { p.store.Clear() }

// Dispose detaches every engine. The player is inert afterwards.
func (p *Player) Dispose() {
	if p.disposed {
		return
	}
	p.store.Clear()
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
	p.nav.Detach()
	p.disposed = true
}

func (p *Player) Loaded() bool { return p.store.Loaded() }

func (p *Player) Trace() *trace.Trace { return p.store.Trace() }

func (p *Player) CurrentStep() (*trace.Step, bool) { return p.store.CurrentStep() }

func (p *Player) TotalSteps() int { return p.store.TotalSteps() }

func (p *Player) Position() (int, bool) { return p.store.Position() }

func (p *Player) IsComplete() bool { return p.nav.IsComplete() }

func (p *Player) CompletionSignaled() bool { return p.nav.CompletionSignaled() }

func (p *Player) Advance() { p.nav.Advance() }

func (p *Player) Retreat() { p.nav.Retreat() }

func (p *Player) Reset() { p.nav.Reset() }

func (p *Player) JumpToEnd() { p.nav.JumpToEnd() }

func (p *Player) PredictionAnswer(choiceID string) (prediction.Outcome, bool) {
	return p.predict.Answer(choiceID)
}

func (p *Player) PredictionSkip() (prediction.Outcome, bool) { return p.predict.Skip() }

func (p *Player) ActivePrediction() (*trace.PredictionPoint, bool) { return p.predict.Active() }

func (p *Player) Stats() prediction.Stats { return p.predict.Stats() }

func (p *Player) History() []prediction.Outcome { return p.predict.History() }

func (p *Player) PredictionMode() bool { return p.predict.Enabled() }

// SetPredictionMode fails with prediction.ErrQuestionOpen while a question
// is waiting for an answer.
func (p *Player) SetPredictionMode(on bool) error { return p.predict.SetEnabled(on) }

func (p *Player) EffectiveHighlight() (string, bool) { return p.highlight.Effective() }

func (p *Player) HoverEnter(id string) { p.highlight.HoverEnter(id) }

func (p *Player) HoverLeave() { p.highlight.HoverLeave() }

// Frames lists the current step's active frame ids, outermost first.
func (p *Player) Frames() []string {
	step, ok := p.store.CurrentStep()
	if !ok {
		return nil
	}
	return p.highlight.Frames(step)
}
