package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/doeshing/unlp/internal/domain"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorBorder  = lipgloss.Color("#3F3F46")
	colorFocus   = lipgloss.Color("#A78BFA")
	colorMuted   = lipgloss.Color("#71717A")
	colorInfo    = lipgloss.Color("#60A5FA")
	colorAgent   = lipgloss.Color("#C084FC")
	colorSuccess = lipgloss.Color("#4ADE80")
	colorError   = lipgloss.Color("#F87171")
	colorWarning = lipgloss.Color("#FBBF24")
)

// Styles groups every lipgloss style the interface uses.
type Styles struct {
	Title       lipgloss.Style
	Muted       lipgloss.Style
	Status      lipgloss.Style
	Pane        lipgloss.Style
	FocusedPane lipgloss.Style
	PaneTitle   lipgloss.Style
	Badge       lipgloss.Style
	CodeBadge   lipgloss.Style
	TextBadge   lipgloss.Style
	FailBadge   lipgloss.Style
	Code        lipgloss.Style
	Error       lipgloss.Style
	Selected    lipgloss.Style
	Modal       lipgloss.Style
	LogKinds    map[domain.LogKind]lipgloss.Style
	StatusKinds map[domain.ExecutionStatus]lipgloss.Style
}

// DefaultStyles returns the dark palette.
func DefaultStyles() Styles {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Muted:       lipgloss.NewStyle().Foreground(colorMuted),
		Status:      lipgloss.NewStyle().Foreground(colorWarning),
		Pane:        pane,
		FocusedPane: pane.BorderForeground(colorFocus),
		PaneTitle:   lipgloss.NewStyle().Bold(true).Foreground(colorFocus),
		Badge:       badge.Background(colorPrimary).Foreground(lipgloss.Color("#FFFFFF")),
		CodeBadge:   badge.Background(colorInfo).Foreground(lipgloss.Color("#0B1120")),
		TextBadge:   badge.Background(colorMuted).Foreground(lipgloss.Color("#FFFFFF")),
		FailBadge:   badge.Background(colorError).Foreground(lipgloss.Color("#1F0A0A")),
		Code:        lipgloss.NewStyle().Foreground(lipgloss.Color("#E4E4E7")).Background(lipgloss.Color("#18181B")).Padding(0, 1),
		Error:       lipgloss.NewStyle().Foreground(colorError),
		Selected:    lipgloss.NewStyle().Bold(true).Foreground(colorFocus),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2),
		LogKinds: map[domain.LogKind]lipgloss.Style{
			domain.LogInfo:    lipgloss.NewStyle().Foreground(colorInfo),
			domain.LogAgent:   lipgloss.NewStyle().Foreground(colorAgent),
			domain.LogSuccess: lipgloss.NewStyle().Foreground(colorSuccess),
			domain.LogError:   lipgloss.NewStyle().Foreground(colorError),
		},
		StatusKinds: map[domain.ExecutionStatus]lipgloss.Style{
			domain.StatusRunning:   lipgloss.NewStyle().Foreground(colorWarning),
			domain.StatusCompleted: lipgloss.NewStyle().Foreground(colorSuccess),
			domain.StatusFailed:    lipgloss.NewStyle().Foreground(colorError),
		},
	}
}

func (s Styles) logKind(kind domain.LogKind) lipgloss.Style {
	if style, ok := s.LogKinds[kind]; ok {
		return style
	}
	return s.Muted
}

func (s Styles) status(status domain.ExecutionStatus) lipgloss.Style {
	if style, ok := s.StatusKinds[status]; ok {
		return style
	}
	return s.Muted
}
