package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads the API key for a one-shot run, without echo on a terminal.
type Prompter struct {
	in  io.Reader
	out io.Writer
}

// NewPrompter constructs a prompter; nil arguments fall back to stdin and stderr.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return &Prompter{in: in, out: out}
}

// AskAPIKey reads one line. The value is never echoed back.
func (p *Prompter) AskAPIKey() (string, error) {
	fmt.Fprint(p.out, "API key: ")
	defer fmt.Fprintln(p.out)

	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", fmt.Errorf("read api key: %w", err)
		}
		return nonEmptyKey(string(raw))
	}

	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read api key: %w", err)
	}
	return nonEmptyKey(line)
}

func nonEmptyKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", errors.New("no API key provided")
	}
	return key, nil
}
