package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/unlp/internal/application/output"
	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/infrastructure/cli/commands"
	"github.com/doeshing/unlp/internal/infrastructure/cli/helpers"
)

// RenderOptions controls how a one-shot result is printed.
type RenderOptions struct {
	Format string
	// Pretty renders prose payloads as terminal markdown.
	Pretty bool
	Width  int
}

// RenderResult prints a terminal execution to out. Failed executions print nothing
// in text format; the caller reports the error.
func RenderResult(out io.Writer, exec domain.Execution, opts RenderOptions) error {
	switch strings.ToLower(opts.Format) {
	case "", commands.OutputText:
		if exec.Status != domain.StatusCompleted || exec.Result == nil {
			return nil
		}
		payload := exec.Result.Payload
		if opts.Pretty && !output.IsCode(payload) {
			payload = renderMarkdown(payload, opts.Width)
		}
		_, err := fmt.Fprintln(out, strings.TrimRight(payload, "\n"))
		return err
	case commands.OutputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(exec)
	case commands.OutputYAML:
		// Through JSON so the keys match the json format.
		generic, err := helpers.ToJSONValue(exec)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		return fmt.Errorf(commands.ErrUnsupportedOutput, opts.Format, "text, json or yaml")
	}
}

func renderMarkdown(md string, width int) (out string) {
	if width <= 0 {
		width = 100
	}
	defer func() {
		if recover() != nil {
			out = md
		}
	}()
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return md
	}
	rendered, err := r.Render(md)
	if err != nil {
		return md
	}
	return rendered
}
