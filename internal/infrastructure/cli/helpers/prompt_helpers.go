package helpers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirmAttempts bounds re-prompting on unrecognised answers.
const confirmAttempts = 3

// Confirm asks a yes/no question whose default is no. Unrecognised answers
// are asked again; end of input counts as no.
func Confirm(out io.Writer, in io.Reader, question string) bool {
	reader := bufio.NewReader(in)
	for attempt := 0; attempt < confirmAttempts; attempt++ {
		fmt.Fprintf(out, "%s [y/N]: ", question)
		line, err := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "", "n", "no":
			return false
		}
		if err != nil {
			return false
		}
		fmt.Fprintln(out, "Please answer y or n.")
	}
	return false
}

// PrintWarnings writes one "Warning:" line per non-blank message.
func PrintWarnings(out io.Writer, warnings ...string) {
	for _, warning := range warnings {
		if warning = strings.TrimSpace(warning); warning != "" {
			fmt.Fprintln(out, "Warning: "+warning)
		}
	}
}
