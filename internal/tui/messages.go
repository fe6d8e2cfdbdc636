package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/stepthrough/internal/source"
)

type traceFetchedMsg struct {
	resp source.Response
}

type fileChangedMsg struct {
	path string
}

func fetchCmd(loader *source.Loader, req source.Request, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return traceFetchedMsg{resp: loader.Fetch(ctx, req)}
	}
}

// waitForChange yields one fileChangedMsg per watcher notification.
func waitForChange(changes <-chan string) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-changes
		if !ok {
			return nil
		}
		return fileChangedMsg{path: path}
	}
}
