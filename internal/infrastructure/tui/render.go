package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"

	"github.com/doeshing/unlp/internal/application/output"
	"github.com/doeshing/unlp/internal/domain"
)

const historyInputLines = 2

// markdownRenderer renders prose payloads. Any renderer failure falls back to the raw text.
type markdownRenderer struct {
	style string
	width int
	tr    *glamour.TermRenderer
}

func newMarkdownRenderer(style string, width int) *markdownRenderer {
	if width < 20 {
		width = 20
	}
	r := &markdownRenderer{style: style, width: width}
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	tr, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err == nil {
		r.tr = tr
	}
	return r
}

func (r *markdownRenderer) Render(md string) (out string) {
	if r == nil || r.tr == nil {
		return md
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = md
		}
	}()
	rendered, err := r.tr.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(rendered, "\n")
}

func formatLogLine(entry domain.LogEntry, styles Styles) string {
	stamp := entry.Timestamp.Local().Format(domain.LogTimestampFormat)
	return styles.Muted.Render("["+stamp+"]") + " " + styles.logKind(entry.Kind).Render(entry.Message)
}

func renderLogs(entries []domain.LogEntry, styles Styles) string {
	if len(entries) == 0 {
		return styles.Muted.Render("No activity yet.")
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, formatLogLine(entry, styles))
	}
	return strings.Join(lines, "\n")
}

// clampLines keeps the first n lines of s, truncating each to width runes.
func clampLines(s string, n, width int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	clipped := len(lines) > n
	if clipped {
		lines = lines[:n]
	}
	for i, line := range lines {
		runes := []rune(line)
		if width > 1 && len(runes) > width {
			lines[i] = string(runes[:width-1]) + "…"
		}
	}
	if clipped {
		last := lines[len(lines)-1]
		if !strings.HasSuffix(last, "…") {
			lines[len(lines)-1] = last + "…"
		}
	}
	return strings.Join(lines, "\n")
}

func formatHistoryItem(exec domain.Execution, selected bool, width int, styles Styles) string {
	marker := "  "
	if selected {
		marker = styles.Selected.Render("▸ ")
	}
	header := marker +
		styles.status(exec.Status).Render(string(exec.Status)) + " " +
		styles.Muted.Render(exec.CreatedAt.Local().Format(domain.HistoryTimestampFormat))
	if exec.Status == domain.StatusCompleted && exec.Result != nil && exec.Result.Intent != "" {
		header += " " + styles.PaneTitle.Render(exec.Result.Intent)
	}

	body := clampLines(exec.Input, historyInputLines, width-2)
	indented := make([]string, 0, historyInputLines)
	for _, line := range strings.Split(body, "\n") {
		indented = append(indented, "  "+line)
	}
	return header + "\n" + strings.Join(indented, "\n")
}

// renderHistory returns the pane content plus the first line of each entry.
func renderHistory(executions []domain.Execution, selected, width int, styles Styles) (string, []int) {
	if len(executions) == 0 {
		return styles.Muted.Render("No executions yet."), nil
	}
	var b strings.Builder
	offsets := make([]int, 0, len(executions))
	line := 0
	for i, exec := range executions {
		if i > 0 {
			b.WriteString("\n\n")
			line++
		}
		offsets = append(offsets, line)
		item := formatHistoryItem(exec, i == selected, width, styles)
		b.WriteString(item)
		line += strings.Count(item, "\n") + 1
	}
	return b.String(), offsets
}

func metadataStrip(result domain.ProcessingResult) string {
	parts := []string{
		"Tokens: " + humanize.Comma(int64(result.TokensUsed)),
		fmt.Sprintf("Time: %.2fs", result.ProcessingTimeSeconds),
	}
	if result.ModelName != "" {
		parts = append(parts, "Model: "+result.ModelName)
	}
	return strings.Join(parts, " · ")
}

func renderOutput(exec *domain.Execution, spinner string, md *markdownRenderer, styles Styles) string {
	if exec == nil {
		return styles.Muted.Render("Results will appear here.")
	}
	switch exec.Status {
	case domain.StatusRunning:
		return spinner + " Processing..."
	case domain.StatusFailed:
		msg := exec.Error
		if msg == "" {
			msg = domain.GenericFailureMessage
		}
		return styles.FailBadge.Render("FAILED") + "\n\n" + styles.Error.Render(msg)
	}
	if exec.Result == nil {
		return styles.Muted.Render("No result.")
	}

	result := *exec.Result
	class := output.Classify(result.Payload)
	badges := []string{}
	if result.Intent != "" {
		badges = append(badges, styles.Badge.Render(strings.ToUpper(result.Intent)))
	}
	if class.Code {
		badges = append(badges, styles.CodeBadge.Render("CODE"))
	} else {
		badges = append(badges, styles.TextBadge.Render("TEXT"))
	}

	var body string
	if class.Code {
		body = styles.Code.Render(result.Payload)
	} else {
		body = md.Render(result.Payload)
	}
	return strings.Join(badges, " ") + "\n" + styles.Muted.Render(metadataStrip(result)) + "\n\n" + body
}
