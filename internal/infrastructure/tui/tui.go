package tui

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive client and blocks until the user quits or ctx ends.
func Run(ctx context.Context, deps Deps) error {
	bridge := NewEventBridge(256)
	defer bridge.Close()
	deps.Events = bridge
	deps.Machine.Observer = bridge
	if deps.Copy == nil && !clipboard.Unsupported {
		deps.Copy = clipboard.WriteAll
	}

	program := tea.NewProgram(New(deps), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
