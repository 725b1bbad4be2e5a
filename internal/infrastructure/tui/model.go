// Package tui is the interactive terminal client: credential prompt, live log,
// history, output pane, input box and model picker.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/doeshing/unlp/internal/application/credential"
	"github.com/doeshing/unlp/internal/application/execution"
	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/ports"
)

// Deps are the collaborators the interface drives.
type Deps struct {
	Machine *execution.Machine
	Gate    *credential.Gate
	Ledger  ports.LedgerStore
	Logger  ports.Logger
	Events  *EventBridge
	// Options are attached to every submission.
	Options domain.ProcessOptions
	// MarkdownStyle is a glamour standard style name; empty means auto-detect.
	MarkdownStyle string
	// Copy writes text to the system clipboard; nil disables ctrl+y.
	Copy func(string) error
}

type focusArea int

const (
	focusInput focusArea = iota
	focusHistory
)

// Model is the bubbletea model for the interactive client.
type Model struct {
	deps   Deps
	styles Styles

	input    textarea.Model
	keyInput textinput.Model
	spinner  spinner.Model
	logView  viewport.Model
	histView viewport.Model
	outView  viewport.Model
	markdown *markdownRenderer

	width  int
	height int
	ready  bool

	showKeyModal bool
	keyError     string
	showPicker   bool
	pickerIndex  int
	models       []domain.ModelDescriptor

	logs        []domain.LogEntry
	history     []domain.Execution
	histOffsets []int
	selected    int
	filter      string
	filtering   bool
	running     bool
	status      string
	focus       focusArea
}

// New builds the initial model. The credential prompt opens when the gate is closed.
func New(deps Deps) Model {
	if deps.Events == nil {
		deps.Events = NewEventBridge(256)
	}

	ta := textarea.New()
	ta.Placeholder = "Describe a task... (enter to send, alt+enter for a new line)"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	ki := textinput.New()
	ki.Placeholder = "gsk_..."
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'
	ki.Width = 48

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		deps:     deps,
		styles:   DefaultStyles(),
		input:    ta,
		keyInput: ki,
		spinner:  sp,
		logView:  viewport.New(40, 6),
		histView: viewport.New(30, 10),
		outView:  viewport.New(40, 10),
		markdown: newMarkdownRenderer(deps.MarkdownStyle, 40),
		selected: -1,
	}
	if deps.Machine != nil {
		m.models = deps.Machine.Models()
	}
	if deps.Gate == nil || !deps.Gate.IsOpen() {
		m.openKeyModal()
	} else {
		m.input.Focus()
	}
	m.refreshHistory()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.deps.Events.wait()}
	if m.deps.Machine != nil && m.deps.Machine.Catalog != nil {
		cmds = append(cmds, loadModels(m.deps.Machine))
	}
	return tea.Batch(cmds...)
}

func loadModels(machine *execution.Machine) tea.Cmd {
	return func() tea.Msg {
		models, err := machine.RefreshModels(context.Background())
		return modelsMsg{models: models, err: err}
	}
}

func submitTask(machine *execution.Machine, text string, opts domain.ProcessOptions) tea.Cmd {
	return func() tea.Msg {
		exec, err := machine.Submit(context.Background(), execution.Submission{Text: text, Options: opts})
		return submitDoneMsg{exec: exec, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case logMsg:
		m.syncLogs(domain.LogEntry(msg))
		return m, m.deps.Events.wait()

	case executionMsg:
		exec := domain.Execution(msg)
		m.refreshHistory()
		if len(m.history) > 0 && m.history[0].ID == exec.ID {
			m.selectHistory(0)
		}
		return m, m.deps.Events.wait()

	case submitDoneMsg:
		m.running = false
		if msg.err != nil {
			switch {
			case errors.Is(msg.err, domain.ErrGateClosed):
				m.openKeyModal()
			case errors.Is(msg.err, domain.ErrRefused):
				m.status = refusalStatus(msg.err)
			default:
				m.status = domain.FailureMessage(msg.err)
			}
		} else {
			m.status = ""
		}
		if m.deps.Machine.Logs != nil {
			m.logs = m.deps.Machine.Logs.Entries()
			m.refreshLogs()
		}
		m.refreshHistory()
		if msg.exec.ID != 0 {
			m.selectByID(msg.exec.ID)
		}
		return m, nil

	case modelsMsg:
		m.models = msg.models
		if msg.err != nil {
			m.status = "Model list unavailable"
		}
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshOutput()
		return m, cmd
	}

	var cmd tea.Cmd
	if m.showKeyModal {
		m.keyInput, cmd = m.keyInput.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func refusalStatus(err error) string {
	switch {
	case errors.Is(err, domain.ErrInFlight):
		return "An execution is already running"
	case errors.Is(err, domain.ErrEmptySubmission):
		return ""
	}
	return err.Error()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showKeyModal {
		return m.handleKeyModal(msg)
	}
	if m.showPicker {
		return m.handlePicker(msg)
	}

	switch msg.String() {
	case "ctrl+k":
		if m.running {
			m.status = "Wait for the current execution to finish"
			return m, nil
		}
		m.deps.Gate.Close()
		m.openKeyModal()
		return m, textinput.Blink
	case "ctrl+o":
		if len(m.models) == 0 {
			m.status = "Model list unavailable"
			return m, nil
		}
		m.openPicker()
		return m, nil
	case "ctrl+y":
		m.copySelected()
		return m, nil
	case "tab":
		if m.focus == focusInput {
			m.focus = focusHistory
			m.input.Blur()
			if m.selected < 0 && len(m.history) > 0 {
				m.selectHistory(0)
			}
			return m, nil
		}
		m.focus = focusInput
		return m, m.input.Focus()
	}

	if m.focus == focusHistory && m.filtering {
		return m.handleFilter(msg)
	}
	if m.focus == focusHistory {
		switch msg.String() {
		case "/":
			m.filtering = true
			return m, nil
		case "up", "k":
			if m.selected > 0 {
				m.selectHistory(m.selected - 1)
			}
		case "down", "j":
			if m.selected < len(m.history)-1 {
				m.selectHistory(m.selected + 1)
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.outView, cmd = m.outView.Update(msg)
			return m, cmd
		case "esc":
			m.focus = focusInput
			return m, m.input.Focus()
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleFilter edits the history search term; the list narrows as it changes.
func (m Model) handleFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyEsc:
		m.filtering = false
		m.filter = ""
	case tea.KeyBackspace:
		if r := []rune(m.filter); len(r) > 0 {
			m.filter = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.filter += " "
	case tea.KeyRunes:
		m.filter += string(msg.Runes)
	default:
		return m, nil
	}
	m.selected = 0
	m.refreshHistory()
	if len(m.history) == 0 {
		m.selected = -1
	}
	m.selectHistory(m.selected)
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if m.running || m.deps.Machine.State() == execution.StateRunning {
		m.status = "An execution is already running"
		return m, nil
	}
	m.running = true
	m.status = ""
	m.input.Reset()
	return m, tea.Batch(m.spinner.Tick, submitTask(m.deps.Machine, text, m.deps.Options))
}

func (m Model) handleKeyModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if _, err := m.deps.Gate.Submit(m.keyInput.Value()); err != nil {
			m.keyError = err.Error()
			return m, nil
		}
		m.keyInput.Reset()
		m.keyError = ""
		m.showKeyModal = false
		m.keyInput.Blur()
		m.status = "API key accepted"
		m.focus = focusInput
		return m, m.input.Focus()
	case tea.KeyEsc:
		// The prompt cannot be dismissed while no key is active.
		if m.deps.Gate.IsOpen() {
			m.showKeyModal = false
			m.keyInput.Reset()
			return m, m.input.Focus()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m Model) handlePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case "down", "j":
		if m.pickerIndex < len(m.models)-1 {
			m.pickerIndex++
		}
	case "enter":
		chosen := m.models[m.pickerIndex]
		if err := m.deps.Machine.SelectModel(chosen.ID); err != nil {
			m.status = err.Error()
		} else {
			m.status = "Model: " + chosen.DisplayName()
		}
		m.showPicker = false
	case "esc", "ctrl+o":
		m.showPicker = false
	}
	return m, nil
}

func (m *Model) copySelected() {
	exec := m.selectedExecution()
	switch {
	case m.deps.Copy == nil:
		m.status = "Clipboard unavailable"
	case exec == nil || exec.Result == nil:
		m.status = "Nothing to copy"
	default:
		if err := m.deps.Copy(exec.Result.Payload); err != nil {
			m.status = "Copy failed: " + err.Error()
			return
		}
		m.status = "Result copied to clipboard"
	}
}

func (m *Model) openKeyModal() {
	m.showKeyModal = true
	m.keyError = ""
	m.keyInput.Reset()
	m.keyInput.Focus()
	m.input.Blur()
}

func (m *Model) openPicker() {
	m.showPicker = true
	m.pickerIndex = 0
	current := m.deps.Machine.SelectedModel().ID
	for i, model := range m.models {
		if model.ID == current {
			m.pickerIndex = i
			break
		}
	}
}

func (m *Model) refreshHistory() {
	if m.deps.Ledger == nil {
		return
	}
	var (
		history []domain.Execution
		err     error
	)
	if strings.TrimSpace(m.filter) != "" {
		history, err = m.deps.Ledger.Search(m.filter, 0)
	} else {
		history, err = m.deps.Ledger.List()
	}
	if err != nil {
		if m.deps.Logger != nil {
			m.deps.Logger.Error("list history failed", err, nil)
		}
		return
	}
	m.history = history
	if m.selected >= len(m.history) {
		m.selected = len(m.history) - 1
	}
	m.renderHistoryPane()
	m.refreshOutput()
}

func (m *Model) selectByID(id domain.ExecutionID) {
	for i, exec := range m.history {
		if exec.ID == id {
			m.selectHistory(i)
			return
		}
	}
}

func (m *Model) selectHistory(i int) {
	m.selected = i
	m.renderHistoryPane()
	if i >= 0 && i < len(m.histOffsets) {
		start := m.histOffsets[i]
		if start < m.histView.YOffset || start >= m.histView.YOffset+m.histView.Height-2 {
			m.histView.SetYOffset(start)
		}
	}
	m.refreshOutput()
	m.outView.GotoTop()
}

func (m *Model) selectedExecution() *domain.Execution {
	if m.selected < 0 || m.selected >= len(m.history) {
		return nil
	}
	exec := m.history[m.selected]
	return &exec
}

func (m *Model) renderHistoryPane() {
	content, offsets := renderHistory(m.history, m.selected, m.histView.Width, m.styles)
	m.histOffsets = offsets
	m.histView.SetContent(content)
}

// syncLogs redraws the live log from the synthesizer, which only ever holds the
// current execution, so notifications from a finished run cannot leak into it.
func (m *Model) syncLogs(entry domain.LogEntry) {
	if m.deps.Machine != nil && m.deps.Machine.Logs != nil {
		m.logs = m.deps.Machine.Logs.Entries()
	} else {
		m.logs = append(m.logs, entry)
	}
	m.refreshLogs()
}

func (m *Model) refreshLogs() {
	m.logView.SetContent(renderLogs(m.logs, m.styles))
	m.logView.GotoBottom()
}

func (m *Model) refreshOutput() {
	m.outView.SetContent(renderOutput(m.selectedExecution(), m.spinner.View(), m.markdown, m.styles))
}

// Selected returns the execution shown in the output pane, if any.
func (m Model) Selected() (domain.Execution, bool) {
	exec := m.selectedExecution()
	if exec == nil {
		return domain.Execution{}, false
	}
	return *exec, true
}
