// Package tui is the bubbletea front end of the player. Every key event goes
// through one input.Router; the prediction card and the info modal register
// their handlers only while they are on screen.
package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/stepthrough/internal/bindings"
	"github.com/jask/stepthrough/internal/input"
	"github.com/jask/stepthrough/internal/player"
	"github.com/jask/stepthrough/internal/prediction"
	"github.com/jask/stepthrough/internal/source"
)

const (
	handlerPlayback   = "playback"
	handlerModal      = "modal"
	handlerPrediction = "prediction"

	defaultFetchTimeout = 15 * time.Second
)

type Options struct {
	Player       *player.Player
	Keys         *bindings.Keymap
	Loader       *source.Loader
	Logger       *zap.Logger
	InitialRef   string
	Changes      <-chan string
	FetchTimeout time.Duration
}

// Model is used through a pointer so router handlers can close over it.
type Model struct {
	player  *player.Player
	keys    *bindings.Keymap
	loader  *source.Loader
	router  *input.Router
	log     *zap.Logger
	changes <-chan string
	timeout time.Duration
	initial string

	playbackReg   *input.Registration
	modalReg      *input.Registration
	predictionReg *input.Registration

	cursor   int
	feedback *prediction.Outcome

	opening bool
	openIn  textinput.Model

	status    string
	statusErr bool
	width     int
	height    int
	queued    []tea.Cmd
}

func New(opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	keys := opts.Keys
	if keys == nil {
		keys = bindings.Default()
	}
	p := opts.Player
	if p == nil {
		p = player.New(player.Options{Logger: log})
	}
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	in := textinput.New()
	in.Prompt = "open: "
	in.Placeholder = "algorithm, file, URL or catalog:name"
	in.CharLimit = 512
	in.Cursor.SetMode(cursor.CursorStatic)

	m := &Model{
		player:  p,
		keys:    keys,
		loader:  opts.Loader,
		router:  input.NewRouter(log.Named("input")),
		log:     log,
		changes: opts.Changes,
		timeout: timeout,
		initial: opts.InitialRef,
		openIn:  in,
		width:   80,
		height:  24,
	}
	m.router.OnFault = func(f *input.HandlerFault) {
		m.setError(fmt.Sprintf("Key %s failed: %v", f.Key, f.Value))
	}
	m.playbackReg = m.router.Register(handlerPlayback, input.TierPlayback, m.keys.Handler(input.TierPlayback, m.performPlayback))
	return m
}

func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.initial != "" {
		cmds = append(cmds, m.startLoad(m.initial))
	} else {
		m.status = "Press o to open a trace."
	}
	if c := waitForChange(m.changes); c != nil {
		cmds = append(cmds, c)
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.openIn.Width = max(10, msg.Width-10)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil
	case traceFetchedMsg:
		m.handleFetched(msg)
		return m, m.drain()
	case fileChangedMsg:
		m.log.Info("trace file changed", zap.String("path", msg.path))
		if m.loader == nil {
			return m, waitForChange(m.changes)
		}
		ref := m.loader.LastRef()
		if !sameFile(ref, msg.path) {
			m.log.Debug("ignoring change to a file that is not on screen", zap.String("path", msg.path), zap.String("ref", ref))
			return m, waitForChange(m.changes)
		}
		return m, tea.Batch(m.startLoad(ref), waitForChange(m.changes))
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.opening {
		// The router drops these; the text input gets them instead.
		m.router.Dispatch(input.Event{Key: msg, Target: input.Target{TextEntry: true, Name: "open"}})
		return m.updateOpenInput(msg)
	}
	m.router.Dispatch(input.Event{Key: msg, Target: input.Target{Name: "player"}})
	m.syncPrediction()
	return m, m.drain()
}

func (m *Model) updateOpenInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeOpenInput()
		m.status = "Open cancelled."
		m.statusErr = false
		return m, nil
	case tea.KeyEnter:
		ref := m.openIn.Value()
		m.closeOpenInput()
		if ref == "" {
			return m, nil
		}
		return m, m.startLoad(ref)
	}
	var cmd tea.Cmd
	m.openIn, cmd = m.openIn.Update(msg)
	return m, cmd
}

func (m *Model) openInput() {
	m.opening = true
	m.openIn.SetValue("")
	m.openIn.Focus()
}

func (m *Model) closeOpenInput() {
	m.opening = false
	m.openIn.Blur()
}

// startLoad supersedes any in-flight load. Navigation is a no-op until the
// response arrives.
func (m *Model) startLoad(ref string) tea.Cmd {
	if m.loader == nil {
		m.setError("No trace source configured.")
		return nil
	}
	req := m.loader.Begin(ref)
	m.beginPending(ref)
	return fetchCmd(m.loader, req, m.timeout)
}

func (m *Model) beginPending(ref string) {
	m.player.Unload()
	m.feedback = nil
	m.syncPrediction()
	m.status = "Loading " + ref + "..."
	m.statusErr = false
}

func (m *Model) handleFetched(msg traceFetchedMsg) {
	t, err := m.loader.Resolve(msg.resp)
	if errors.Is(err, source.ErrStaleResponse) {
		return
	}
	if err != nil {
		m.setError(fmt.Sprintf("Load failed: %v (%s to retry)", err, m.keys.KeyFor(bindings.ActionRetry)))
		return
	}
	if err := m.player.Load(t); err != nil {
		m.setError(fmt.Sprintf("Load failed: %v", err))
		return
	}
	m.cursor = 0
	m.status = fmt.Sprintf("Loaded %s (%d steps).", t.Title(), t.Len())
	m.statusErr = false
	m.syncPrediction()
}

// syncPrediction keeps the prediction handler registered exactly while a
// question is open.
func (m *Model) syncPrediction() {
	_, open := m.player.ActivePrediction()
	switch {
	case open && !m.predictionReg.Active():
		m.cursor = 0
		m.predictionReg = m.router.Register(handlerPrediction, input.TierPrediction, m.keys.Handler(input.TierPrediction, m.performPrediction))
	case !open && m.predictionReg != nil:
		m.predictionReg.Close()
		m.predictionReg = nil
	}
}

func (m *Model) openModal() {
	if m.modalReg.Active() {
		return
	}
	m.modalReg = m.router.Register(handlerModal, input.TierModal, m.handleModalKey)
}

func (m *Model) closeModal() {
	m.modalReg.Close()
	m.modalReg = nil
}

func (m *Model) modalOpen() bool { return m.modalReg.Active() }

func (m *Model) queue(cmd tea.Cmd) {
	if cmd != nil {
		m.queued = append(m.queued, cmd)
	}
}

func (m *Model) drain() tea.Cmd {
	cmds := m.queued
	m.queued = nil
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Batch(cmds...)
}

// sameFile reports whether ref names the file at path.
func sameFile(ref, path string) bool {
	if ref == "" {
		return false
	}
	abs, err := filepath.Abs(ref)
	if err != nil {
		return false
	}
	return abs == filepath.Clean(path)
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusErr = true
	m.log.Warn("status error", zap.String("status", text))
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}
