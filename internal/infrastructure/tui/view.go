package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight = 1
	helpHeight   = 1
	inputHeight  = 3
	minBody      = 8
)

// layout sizes every pane from the terminal dimensions.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.ready = true

	frameW, frameH := m.styles.Pane.GetFrameSize()
	bodyH := m.height - headerHeight - helpHeight - (inputHeight + frameH)
	if bodyH < minBody {
		bodyH = minBody
	}
	histW := m.width / 3
	if histW < 24 {
		histW = 24
	}
	rightW := m.width - histW
	logH := bodyH / 3
	if logH < 4 {
		logH = 4
	}
	outH := bodyH - logH

	// One line per pane goes to its title.
	m.histView.Width, m.histView.Height = histW-frameW, bodyH-frameH-1
	m.logView.Width, m.logView.Height = rightW-frameW, logH-frameH-1
	m.outView.Width, m.outView.Height = rightW-frameW, outH-frameH-1
	m.input.SetWidth(m.width - frameW)
	m.input.SetHeight(inputHeight)

	m.markdown = newMarkdownRenderer(m.deps.MarkdownStyle, m.outView.Width)
	m.renderHistoryPane()
	m.refreshLogs()
	m.refreshOutput()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showKeyModal {
		return m.overlay(m.keyModalView())
	}
	if m.showPicker {
		return m.overlay(m.pickerView())
	}

	historyTitle := "History"
	switch {
	case m.filtering:
		historyTitle += " /" + m.filter + "▏"
	case m.filter != "":
		historyTitle += " /" + m.filter
	}
	history := m.pane(historyTitle, m.histView.View(), m.histView.Width, m.focus == focusHistory)
	logs := m.pane("Live log", m.logView.View(), m.logView.Width, false)
	out := m.pane("Output", m.outView.View(), m.outView.Width, false)
	right := lipgloss.JoinVertical(lipgloss.Left, logs, out)
	body := lipgloss.JoinHorizontal(lipgloss.Top, history, right)

	inputStyle := m.styles.Pane
	if m.focus == focusInput {
		inputStyle = m.styles.FocusedPane
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		body,
		inputStyle.Render(m.input.View()),
		m.helpView(),
	)
}

func (m Model) headerView() string {
	title := m.styles.Title.Render("unlp")
	model := ""
	if m.deps.Machine != nil {
		model = m.styles.Muted.Render(" · " + m.deps.Machine.SelectedModel().DisplayName())
	}
	state := ""
	if m.running {
		state = " " + m.spinner.View() + " running"
	}
	status := ""
	if m.status != "" {
		status = "  " + m.styles.Status.Render(m.status)
	}
	return title + model + state + status
}

func (m Model) helpView() string {
	return m.styles.Muted.Render("enter send · alt+enter newline · tab history · / filter · ctrl+y copy · ctrl+o model · ctrl+k api key · ctrl+c quit")
}

func (m Model) pane(title, content string, width int, focused bool) string {
	style := m.styles.Pane
	if focused {
		style = m.styles.FocusedPane
	}
	return style.Width(width + style.GetHorizontalPadding()).Render(m.styles.PaneTitle.Render(title) + "\n" + content)
}

func (m Model) overlay(box string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) keyModalView() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Groq API key"))
	b.WriteString("\n\n")
	b.WriteString("The key stays in memory for this session only.\n\n")
	b.WriteString(m.keyInput.View())
	if m.keyError != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Error.Render(m.keyError))
	}
	b.WriteString("\n\n")
	hint := "enter confirm"
	if m.deps.Gate != nil && m.deps.Gate.IsOpen() {
		hint += " · esc cancel"
	}
	b.WriteString(m.styles.Muted.Render(hint))
	return m.styles.Modal.Render(b.String())
}

func (m Model) pickerView() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Select model"))
	b.WriteString("\n\n")
	current := m.deps.Machine.SelectedModel().ID
	for i, model := range m.models {
		cursor := "  "
		line := fmt.Sprintf("%s (%s)", model.DisplayName(), model.ID)
		if model.ID == current {
			line += " ✓"
		}
		if i == m.pickerIndex {
			cursor = "▸ "
			line = m.styles.Selected.Render(line)
		}
		b.WriteString(cursor + line + "\n")
		if model.Description != "" {
			b.WriteString("    " + m.styles.Muted.Render(model.Description) + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("↑/↓ move · enter select · esc close"))
	return m.styles.Modal.Render(b.String())
}
