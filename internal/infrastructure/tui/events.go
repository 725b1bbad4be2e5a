package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/ports"
)

type logMsg domain.LogEntry

type executionMsg domain.Execution

type submitDoneMsg struct {
	exec domain.Execution
	err  error
}

type modelsMsg struct {
	models []domain.ModelDescriptor
	err    error
}

// EventBridge forwards state machine notifications into the bubbletea loop.
type EventBridge struct {
	ch        chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventBridge buffers up to size notifications.
func NewEventBridge(size int) *EventBridge {
	return &EventBridge{ch: make(chan tea.Msg, size), done: make(chan struct{})}
}

func (b *EventBridge) LogEmitted(entry domain.LogEntry) {
	b.send(logMsg(entry))
}

func (b *EventBridge) ExecutionChanged(exec domain.Execution) {
	b.send(executionMsg(exec))
}

// Close unblocks pending senders once the program has exited.
func (b *EventBridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *EventBridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

// wait returns a command delivering the next notification.
func (b *EventBridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}

var _ ports.Observer = (*EventBridge)(nil)
