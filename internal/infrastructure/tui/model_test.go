package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/unlp/internal/application/credential"
	"github.com/doeshing/unlp/internal/application/execution"
	"github.com/doeshing/unlp/internal/application/logstream"
	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/infrastructure/history"
	"github.com/doeshing/unlp/internal/pkg/logger"
)

type stubProcessor struct {
	result domain.ProcessingResult
	err    error
}

func (s stubProcessor) Process(context.Context, domain.ProcessRequest) (domain.ProcessingResult, error) {
	return s.result, s.err
}

type fixture struct {
	machine *execution.Machine
	gate    *credential.Gate
	bridge  *EventBridge
}

func newFixture(t *testing.T, proc stubProcessor) fixture {
	t.Helper()
	bridge := NewEventBridge(64)
	t.Cleanup(bridge.Close)
	gate := credential.NewGate()
	machine := &execution.Machine{
		Gate:      gate,
		Processor: proc,
		Ledger:    history.NewMemoryStore(),
		Logs:      logstream.New(),
		Logger:    logger.NewNop(),
		Observer:  bridge,
	}
	return fixture{machine: machine, gate: gate, bridge: bridge}
}

func (f fixture) model(t *testing.T) Model {
	t.Helper()
	m := New(Deps{
		Machine:       f.machine,
		Gate:          f.gate,
		Ledger:        f.machine.Ledger,
		Logger:        f.machine.Logger,
		Events:        f.bridge,
		MarkdownStyle: "notty",
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	return updated.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func enter(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

// runSubmit executes the batched commands returned by a submission and feeds
// their messages back, including observer notifications.
func runSubmit(t *testing.T, f fixture, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	msgs := []tea.Msg{cmd()}
	if batch, ok := msgs[0].(tea.BatchMsg); ok {
		msgs = msgs[:0]
		for _, c := range batch {
			if c != nil {
				msgs = append(msgs, c())
			}
		}
	}
	var done tea.Msg
	for _, msg := range msgs {
		if _, ok := msg.(submitDoneMsg); ok {
			done = msg
			continue
		}
		m, _ = update(t, m, msg)
	}
	for {
		select {
		case msg := <-f.bridge.ch:
			m, _ = update(t, m, msg)
			continue
		default:
		}
		break
	}
	require.NotNil(t, done, "submission command did not run")
	m, _ = update(t, m, done)
	return m
}

func TestNewOpensKeyPromptWhileGateClosed(t *testing.T) {
	f := newFixture(t, stubProcessor{})
	m := f.model(t)

	assert.True(t, m.showKeyModal)
	assert.Contains(t, m.View(), "Groq API key")

	// esc cannot dismiss the prompt without a key
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.showKeyModal)
}

func TestKeyPromptRejectsMalformedKey(t *testing.T) {
	f := newFixture(t, stubProcessor{})
	m := f.model(t)

	m = typeText(t, m, "sk-wrong")
	m, _ = enter(t, m)

	assert.True(t, m.showKeyModal)
	assert.False(t, f.gate.IsOpen())
	assert.Contains(t, m.keyError, "gsk_")
}

func TestKeyPromptAcceptsKeyAndNeverRendersIt(t *testing.T) {
	f := newFixture(t, stubProcessor{})
	m := f.model(t)

	m = typeText(t, m, "gsk_secret_value_1234")
	assert.NotContains(t, m.View(), "gsk_secret_value_1234")

	m, _ = enter(t, m)
	assert.False(t, m.showKeyModal)
	assert.True(t, f.gate.IsOpen())
	assert.Equal(t, focusInput, m.focus)
	assert.NotContains(t, m.View(), "secret_value")
}

func TestChangeKeyClosesGate(t *testing.T) {
	f := newFixture(t, stubProcessor{})
	_, err := f.gate.Submit("gsk_test_1234567890")
	require.NoError(t, err)
	m := f.model(t)
	require.False(t, m.showKeyModal)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlK})

	assert.True(t, m.showKeyModal)
	assert.False(t, f.gate.IsOpen())
}

func TestEnterOnBlankInputDoesNothing(t *testing.T) {
	f := newFixture(t, stubProcessor{})
	_, _ = f.gate.Submit("gsk_test_1234567890")
	m := f.model(t)

	m = typeText(t, m, "   ")
	m, cmd := enter(t, m)

	assert.Nil(t, cmd)
	assert.False(t, m.running)
}

func TestSubmitRendersCompletedCodeResult(t *testing.T) {
	f := newFixture(t, stubProcessor{result: domain.ProcessingResult{
		Intent:                "custom",
		Payload:               "func main() {\n\tprintln(\"hi\")\n}",
		TokensUsed:            1234,
		ProcessingTimeSeconds: 0.5,
		ModelName:             "GPT OSS 120B",
	}})
	_, _ = f.gate.Submit("gsk_test_1234567890")
	m := f.model(t)

	m = typeText(t, m, "write a go program")
	m, cmd := enter(t, m)
	assert.True(t, m.running)
	assert.Empty(t, m.input.Value())

	m = runSubmit(t, f, m, cmd)

	assert.False(t, m.running)
	exec, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, domain.StatusCompleted, exec.Status)

	view := m.View()
	assert.Contains(t, view, "CUSTOM")
	assert.Contains(t, view, "CODE")
	assert.Contains(t, view, "Tokens: 1,234")
	assert.Contains(t, view, "Model: GPT OSS 120B")
	assert.Contains(t, view, "Completed successfully!")
	assert.Contains(t, view, "write a go program")
	assert.Len(t, m.logs, 9)
}

func TestSubmitRendersFailure(t *testing.T) {
	f := newFixture(t, stubProcessor{err: &domain.BackendError{StatusCode: 429, Message: "Rate limit exceeded: 20 per 1 minute"}})
	_, _ = f.gate.Submit("gsk_test_1234567890")
	m := f.model(t)

	m = typeText(t, m, "summarize this")
	m, cmd := enter(t, m)
	m = runSubmit(t, f, m, cmd)

	exec, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, domain.StatusFailed, exec.Status)
	view := m.View()
	assert.Contains(t, view, "FAILED")
	assert.Contains(t, view, "Rate limit exceeded: 20 per 1 minute")
	assert.Equal(t, "Rate limit exceeded: 20 per 1 minute", m.status)
}

func TestEnterWhileRunningKeepsInput(t *testing.T) {
	f := newFixture(t, stubProcessor{})
	_, _ = f.gate.Submit("gsk_test_1234567890")
	m := f.model(t)
	m.running = true

	m = typeText(t, m, "second task")
	m, cmd := enter(t, m)

	assert.Nil(t, cmd)
	assert.Equal(t, "second task", m.input.Value())
	assert.Equal(t, "An execution is already running", m.status)
}

func TestHistoryNavigationSwitchesOutput(t *testing.T) {
	f := newFixture(t, stubProcessor{result: domain.ProcessingResult{Intent: "summarization", Payload: "Short summary."}})
	_, _ = f.gate.Submit("gsk_test_1234567890")
	m := f.model(t)

	for _, task := range []string{"first task", "second task"} {
		m = typeText(t, m, task)
		var cmd tea.Cmd
		m, cmd = enter(t, m)
		m = runSubmit(t, f, m, cmd)
	}
	exec, _ := m.Selected()
	assert.Equal(t, "second task", exec.Input)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, focusHistory, m.focus)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})

	exec, _ = m.Selected()
	assert.Equal(t, "first task", exec.Input)
}

func TestModelPickerSelectsModel(t *testing.T) {
	f := newFixture(t, stubProcessor{})
	_, _ = f.gate.Submit("gsk_test_1234567890")
	m := f.model(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.False(t, m.showPicker)
	assert.Equal(t, "Model list unavailable", m.status)

	models := []domain.ModelDescriptor{
		{ID: "openai/gpt-oss-120b", Name: "GPT OSS 120B"},
		{ID: "llama-3.1-8b-instant", Name: "Llama 3.1 8B"},
	}
	f.machine.SetModels(models)
	m, _ = update(t, m, modelsMsg{models: models})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	require.True(t, m.showPicker)
	assert.Contains(t, m.View(), "Llama 3.1 8B (llama-3.1-8b-instant)")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = enter(t, m)

	assert.False(t, m.showPicker)
	assert.Equal(t, "llama-3.1-8b-instant", f.machine.SelectedModel().ID)
	assert.Contains(t, m.View(), "Llama 3.1 8B")
}

func TestSpinnerTickIgnoredWhenIdle(t *testing.T) {
	f := newFixture(t, stubProcessor{})
	m := f.model(t)

	_, cmd := update(t, m, spinner.TickMsg{})
	assert.Nil(t, cmd)
}

func TestFormatLogLineUsesLocalMilliseconds(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 30, 45, 123_000_000, time.UTC)
	line := formatLogLine(domain.LogEntry{Timestamp: ts, Message: "Initializing request...", Kind: domain.LogInfo}, DefaultStyles())

	assert.Contains(t, line, "["+ts.Local().Format("15:04:05.000")+"]")
	assert.Contains(t, line, "Initializing request...")
}

func TestClampLines(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "short", in: "hello", width: 20, want: "hello"},
		{name: "two lines kept", in: "a\nb", width: 20, want: "a\nb"},
		{name: "third line dropped", in: "a\nb\nc", width: 20, want: "a\nb…"},
		{name: "long line truncated", in: "abcdefghij", width: 5, want: "abcd…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampLines(tt.in, 2, tt.width))
		})
	}
}

func TestRenderOutputFallsBackToPlainText(t *testing.T) {
	exec := &domain.Execution{
		Status: domain.StatusCompleted,
		Result: &domain.ProcessingResult{Intent: "summarization", Payload: "Plain prose answer."},
	}
	out := renderOutput(exec, "", &markdownRenderer{}, DefaultStyles())

	assert.Contains(t, out, "TEXT")
	assert.Contains(t, out, "Plain prose answer.")
	assert.True(t, strings.HasSuffix(out, "Plain prose answer."))
}

func TestMarkdownRendererClampsNarrowWidth(t *testing.T) {
	for _, width := range []int{-1, 0, 5, 19} {
		r := newMarkdownRenderer("notty", width)
		assert.Equal(t, 20, r.width, "width %d", width)
	}
	assert.Equal(t, 72, newMarkdownRenderer("notty", 72).width)
}

func TestEventBridgeCloseUnblocksSenders(t *testing.T) {
	bridge := NewEventBridge(0)
	done := make(chan struct{})
	go func() {
		bridge.LogEmitted(domain.LogEntry{Message: "late"})
		close(done)
	}()
	bridge.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sender still blocked after Close")
	}
	assert.Nil(t, bridge.wait()())
}

func TestHistoryFilterNarrowsList(t *testing.T) {
	f := newFixture(t, stubProcessor{result: domain.ProcessingResult{Intent: "translation", Payload: "**German:** Hallo"}})
	_, _ = f.gate.Submit("gsk_test_1234567890")
	m := f.model(t)

	for _, task := range []string{"translate hello", "summarize the report"} {
		m = typeText(t, m, task)
		var cmd tea.Cmd
		m, cmd = enter(t, m)
		m = runSubmit(t, f, m, cmd)
	}
	require.Len(t, m.history, 2)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "/")
	require.True(t, m.filtering)
	m = typeText(t, m, "REPORT")

	require.Len(t, m.history, 1)
	exec, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "summarize the report", exec.Input)
	assert.Contains(t, m.View(), "History /REPORT")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.filtering)
	assert.Len(t, m.history, 2)
}

func TestCopyPutsSelectedPayloadOnClipboard(t *testing.T) {
	f := newFixture(t, stubProcessor{result: domain.ProcessingResult{Intent: "summarization", Payload: "Short summary."}})
	_, _ = f.gate.Submit("gsk_test_1234567890")
	m := f.model(t)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Clipboard unavailable", m.status)

	var copied string
	m.deps.Copy = func(text string) error {
		copied = text
		return nil
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Nothing to copy", m.status)

	m = typeText(t, m, "summarize the notes")
	m, cmd := enter(t, m)
	m = runSubmit(t, f, m, cmd)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "Short summary.", copied)
	assert.Equal(t, "Result copied to clipboard", m.status)
}
