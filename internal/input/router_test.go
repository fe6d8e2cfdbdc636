package input

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func keyEvent(r rune) Event {
	return Event{Key: tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}}
}

func TestHighestConsumingHandlerStopsIteration(t *testing.T) {
	r := NewRouter(nil)
	var calls []string
	r.Register("playback", TierPlayback, func(Event) bool { calls = append(calls, "playback"); return true })
	r.Register("modal", TierModal, func(Event) bool { calls = append(calls, "modal"); return true })
	r.Register("prediction", TierPrediction, func(Event) bool { calls = append(calls, "prediction"); return false })

	if !r.Dispatch(keyEvent('n')) {
		t.Fatal("expected the event to be consumed")
	}
	if diff := cmp.Diff([]string{"prediction", "modal"}, calls); diff != "" {
		t.Fatalf("call order (-want +got):\n%s", diff)
	}
}

func TestTiesBreakByRegistrationOrder(t *testing.T) {
	r := NewRouter(nil)
	var calls []string
	for _, id := range []string{"a", "b", "c"} {
		r.Register(id, 5, func(Event) bool { calls = append(calls, id); return false })
	}
	r.Register("a", 5, func(Event) bool { calls = append(calls, "a2"); return false })
	r.Dispatch(keyEvent('x'))
	if diff := cmp.Diff([]string{"b", "c", "a2"}, calls); diff != "" {
		t.Fatalf("tie order (-want +got):\n%s", diff)
	}
}

func TestTextEntryEventsAreDropped(t *testing.T) {
	r := NewRouter(nil)
	called := false
	r.Register("playback", TierPlayback, func(Event) bool { called = true; return true })
	ev := keyEvent('n')
	ev.Target = Target{TextEntry: true, Name: "open"}
	if r.Dispatch(ev) || called {
		t.Fatal("text entry event reached a handler")
	}
}

func TestRegistrationClose(t *testing.T) {
	r := NewRouter(nil)
	old := r.Register("modal", TierModal, func(Event) bool { return true })
	newer := r.Register("modal", TierModal, func(Event) bool { return true })
	if old.Active() {
		t.Fatal("replaced registration should no longer be active")
	}
	old.Close()
	if !r.Registered("modal") {
		t.Fatal("closing a stale handle removed the newer registration")
	}
	newer.Close()
	newer.Close()
	if r.Registered("modal") || r.Len() != 0 {
		t.Fatal("close should unregister")
	}
	var nilReg *Registration
	nilReg.Close()
}

func TestHandlerCanUnregisterDuringDispatch(t *testing.T) {
	r := NewRouter(nil)
	var reg *Registration
	second := false
	reg = r.Register("first", 2, func(Event) bool { reg.Close(); return false })
	r.Register("second", 1, func(Event) bool { second = true; return true })
	if !r.Dispatch(keyEvent('x')) || !second {
		t.Fatal("dispatch should continue over the snapshot")
	}
	if r.Registered("first") {
		t.Fatal("self-unregister did not stick")
	}
}

func TestPanickingHandlerIsFaultNotConsumed(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := NewRouter(zap.New(core))
	var faults []*HandlerFault
	r.OnFault = func(f *HandlerFault) { faults = append(faults, f) }
	lower := false
	r.Register("broken", TierModal, func(Event) bool { panic("boom") })
	r.Register("playback", TierPlayback, func(Event) bool { lower = true; return true })

	if !r.Dispatch(keyEvent('q')) || !lower {
		t.Fatal("a faulting handler must not stop iteration")
	}
	if len(faults) != 1 || faults[0].ID != "broken" || faults[0].Key != "q" {
		t.Fatalf("faults = %+v", faults)
	}
	var target *HandlerFault
	if !errors.As(error(faults[0]), &target) {
		t.Fatal("HandlerFault should be an error")
	}
	if logs.FilterMessage("input handler fault").Len() != 1 {
		t.Fatalf("fault was not logged: %v", logs.All())
	}
}
