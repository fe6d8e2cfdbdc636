package tui

import (
	"errors"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/stepthrough/internal/bindings"
	"github.com/jask/stepthrough/internal/input"
	"github.com/jask/stepthrough/internal/prediction"
)

func (m *Model) performPlayback(b bindings.Binding, _ input.Event) bool {
	switch b.Action {
	case bindings.ActionNext:
		m.feedback = nil
		m.player.Advance()
		if m.player.CompletionSignaled() {
			m.setStatus("End of trace.")
		}
	case bindings.ActionPrev:
		m.feedback = nil
		m.player.Retreat()
	case bindings.ActionReset:
		m.feedback = nil
		m.player.Reset()
		if m.player.Loaded() {
			m.setStatus("Back to the first step.")
		}
	case bindings.ActionJumpEnd:
		m.feedback = nil
		m.player.JumpToEnd()
	case bindings.ActionTogglePrediction:
		m.togglePrediction()
	case bindings.ActionOpen:
		m.openInput()
	case bindings.ActionRetry:
		if m.loader == nil {
			return true
		}
		if req, ok := m.loader.Retry(); ok {
			m.beginPending(req.Ref)
			m.queue(fetchCmd(m.loader, req, m.timeout))
		}
	case bindings.ActionHelp:
		m.openModal()
	case bindings.ActionQuit:
		m.queue(tea.Quit)
	default:
		return false
	}
	return true
}

func (m *Model) togglePrediction() {
	on := !m.player.PredictionMode()
	if err := m.player.SetPredictionMode(on); err != nil {
		if errors.Is(err, prediction.ErrQuestionOpen) {
			m.setError("Answer or skip the open question first.")
			return
		}
		m.setError(err.Error())
		return
	}
	if on {
		m.setStatus("Prediction mode on.")
	} else {
		m.setStatus("Prediction mode off.")
	}
}

// performPrediction drives the open question's card. It outranks the info
// modal, so answer keys work even while help is showing.
func (m *Model) performPrediction(b bindings.Binding, ev input.Event) bool {
	point, ok := m.player.ActivePrediction()
	if !ok {
		return false
	}
	n := len(point.Choices)
	if n == 0 && b.Action != bindings.ActionSkip {
		// nothing to pick; only skip resolves it
		return true
	}
	switch b.Action {
	case bindings.ActionChoicePrev:
		m.cursor = (m.cursor - 1 + n) % n
	case bindings.ActionChoiceNext:
		m.cursor = (m.cursor + 1) % n
	case bindings.ActionPickChoice:
		i, err := strconv.Atoi(ev.KeyName())
		if err != nil || i < 1 || i > n {
			return true
		}
		m.cursor = i - 1
		m.answer(point.Choices[m.cursor].ID)
	case bindings.ActionSubmit:
		m.answer(point.Choices[m.cursor].ID)
	case bindings.ActionSkip:
		out, ok := m.player.PredictionSkip()
		if ok {
			m.feedback = &out
			m.setStatus("Skipped.")
		}
	default:
		return false
	}
	return true
}

func (m *Model) answer(choiceID string) {
	out, ok := m.player.PredictionAnswer(choiceID)
	if !ok {
		return
	}
	m.feedback = &out
	stats := m.player.Stats()
	m.setStatus(fmt.Sprintf("Score %d/%d.", stats.Correct, stats.Total))
}

// handleModalKey blocks everything below the modal. Only close keys act.
func (m *Model) handleModalKey(ev input.Event) bool {
	if b := m.keys.Lookup(input.TierModal, ev.KeyName()); b != nil && b.Action == bindings.ActionClose {
		m.closeModal()
	}
	return true
}
