package cli

import (
	"errors"
	"runtime"

	"github.com/atotto/clipboard"
)

// Clipboard copies results to the system clipboard.
type Clipboard struct {
	write func(string) error
}

// NewClipboard builds the clipboard helper.
func NewClipboard() *Clipboard {
	return &Clipboard{write: clipboard.WriteAll}
}

// Enabled reports whether a clipboard tool was found at startup.
func (c *Clipboard) Enabled() bool {
	return !clipboard.Unsupported
}

// Copy copies text to the system clipboard.
func (c *Clipboard) Copy(text string) error {
	if !c.Enabled() {
		return errors.New("clipboard not supported on " + runtime.GOOS + " (install xclip, xsel or wl-clipboard)")
	}
	return c.write(text)
}
