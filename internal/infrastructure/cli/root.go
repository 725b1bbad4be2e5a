package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/unlp/internal/app"
	"github.com/doeshing/unlp/internal/application/execution"
	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/infrastructure/cli/commands"
	"github.com/doeshing/unlp/internal/infrastructure/tui"
	"github.com/doeshing/unlp/internal/version"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command. The container is built lazily, after
// flag parsing, by whichever command needs it; the returned Env releases it.
func NewRootCmd(opts Options) (*cobra.Command, *commands.Env) {
	env := &commands.Env{Options: app.Options{Verbose: opts.Verbose}}

	root := &cobra.Command{
		Use:   "unlp",
		Short: "unlp - Universal NLP client",
		Long: "unlp submits natural-language tasks to an inference backend, narrates progress\n" +
			"as a live log and renders the result. Without a subcommand it opens the terminal UI.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env.Options.Interactive = true
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), tui.Deps{
				Machine: container.Machine,
				Gate:    container.Gate,
				Ledger:  container.Ledger,
				Logger:  container.Logger,
			})
		},
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("unlp version {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&env.Options.ConfigPath, "config", "", "Config file (default ~/.unlp/config.yaml, or $UNLP_CONFIG)")
	flags.BoolVarP(&env.Options.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging")
	flags.StringVar(&env.Options.APIKey, "api-key", "", "API key for this session (default $"+domain.CredentialEnvVar+")")
	flags.StringVar(&env.Options.BaseURL, "base-url", "", "Backend base URL (overrides backend.base_url)")

	root.AddCommand(
		newRunCommand(env),
		commands.NewModelsCommand(env),
		commands.NewDoctorCommand(env),
		commands.NewConfigCommand(env),
		commands.NewMockBackendCommand(env),
		commands.NewVersionCommand(),
	)
	return root, env
}

type runFlags struct {
	model        string
	temperature  float64
	maxTokens    int
	topP         float64
	enableSearch bool
	enableCode   bool
	timeout      time.Duration
	output       string
	quiet        bool
	pretty       bool
	copyResult   bool
	keyFromStdin bool
}

func newRunCommand(env *commands.Env) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Submit one task and print the result",
		Long: "Runs a single submission. The live log goes to stderr, the result to stdout;\n" +
			"the exit status is non-zero when the execution fails.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, env, flags, strings.Join(args, " "))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.model, "model", "m", "", "Model id (default preferences.default_model)")
	f.Float64Var(&flags.temperature, "temperature", 0, "Sampling temperature (0-2)")
	f.IntVar(&flags.maxTokens, "max-tokens", 0, "Maximum completion tokens")
	f.Float64Var(&flags.topP, "top-p", 0, "Nucleus sampling probability (0-1)")
	f.BoolVar(&flags.enableSearch, "enable-search", false, "Allow the backend to use web search")
	f.BoolVar(&flags.enableCode, "enable-code", false, "Allow the backend to run code")
	f.DurationVar(&flags.timeout, "timeout", 0, "Overall deadline for the run (default backend.timeout_seconds)")
	f.StringVarP(&flags.output, "output", "o", commands.OutputText, "Output format: text, json or yaml")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Show a spinner instead of the live log")
	f.BoolVar(&flags.pretty, "pretty", false, "Render prose results as terminal markdown")
	f.BoolVarP(&flags.copyResult, "copy", "c", false, "Copy the result to the clipboard")
	f.BoolVar(&flags.keyFromStdin, "api-key-stdin", false, "Read the API key from the first line of stdin")
	return cmd
}

func runOnce(cmd *cobra.Command, env *commands.Env, flags runFlags, task string) error {
	ctx := cmd.Context()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	opts, err := processOptions(cmd, flags)
	if err != nil {
		return err
	}

	container, err := env.Container(ctx)
	if err != nil {
		return err
	}

	if flags.keyFromStdin {
		key, err := NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).AskAPIKey()
		if err != nil {
			return err
		}
		if _, err := container.Gate.Submit(key); err != nil {
			return err
		}
	}
	if !container.Gate.IsOpen() {
		return fmt.Errorf("an API key is required: set %s, or pass --api-key or --api-key-stdin", domain.CredentialEnvVar)
	}

	if flags.model != "" {
		// An unreachable catalog leaves selection unvalidated.
		_, _ = container.Machine.RefreshModels(ctx)
		if err := container.Machine.SelectModel(flags.model); err != nil {
			return err
		}
	}

	stderr := cmd.ErrOrStderr()
	var spinner *Spinner
	if flags.quiet {
		spinner = NewSpinner(stderr, "Processing...")
		spinner.Start()
		defer spinner.Stop()
	} else {
		container.Machine.Observer = NewStreamWriter(stderr)
	}

	exec, submitErr := container.Machine.Submit(ctx, execution.Submission{Text: task, Options: opts})
	if spinner != nil {
		spinner.Stop()
	}
	if exec.ID == 0 {
		return submitErr
	}

	if err := RenderResult(cmd.OutOrStdout(), exec, RenderOptions{Format: flags.output, Pretty: flags.pretty}); err != nil {
		return err
	}
	if exec.Status == domain.StatusFailed {
		return errors.New(exec.Error)
	}
	if submitErr != nil {
		return submitErr
	}

	if flags.copyResult && exec.Result != nil {
		if err := NewClipboard().Copy(exec.Result.Payload); err != nil {
			fmt.Fprintf(stderr, "Warning: copy failed: %v\n", err)
		} else {
			fmt.Fprintln(stderr, "Result copied to clipboard.")
		}
	}
	return nil
}

func processOptions(cmd *cobra.Command, flags runFlags) (domain.ProcessOptions, error) {
	opts := domain.ProcessOptions{
		EnableSearch: flags.enableSearch,
		EnableCode:   flags.enableCode,
	}
	changed := cmd.Flags().Changed
	if changed("temperature") {
		if flags.temperature < 0 || flags.temperature > 2 {
			return opts, fmt.Errorf("--temperature must be between 0 and 2, got %g", flags.temperature)
		}
		t := flags.temperature
		opts.Temperature = &t
	}
	if changed("top-p") {
		if flags.topP < 0 || flags.topP > 1 {
			return opts, fmt.Errorf("--top-p must be between 0 and 1, got %g", flags.topP)
		}
		p := flags.topP
		opts.TopP = &p
	}
	if changed("max-tokens") {
		if flags.maxTokens <= 0 {
			return opts, fmt.Errorf("--max-tokens must be positive, got %d", flags.maxTokens)
		}
		n := flags.maxTokens
		opts.MaxTokens = &n
	}
	return opts, nil
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, opts Options) int {
	root, env := NewRootCmd(opts)
	err := root.ExecuteContext(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if closeErr := env.Close(closeCtx); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
