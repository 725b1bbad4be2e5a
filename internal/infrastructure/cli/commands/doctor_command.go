package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/unlp/internal/domain"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(env *Env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, backend and credential setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			if container.DoctorService == nil {
				return errors.New(ErrDoctorServiceUnavailable)
			}

			// The report is printed even when a check could not run.
			report, runErr := container.DoctorService.Run(cmd.Context())
			if err := writeReport(cmd.OutOrStdout(), report, output); err != nil {
				return err
			}
			if runErr != nil {
				return fmt.Errorf("diagnostics incomplete: %w", runErr)
			}
			if failed := report.Count(domain.HealthError); failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputText, "Output format: text, json or yaml")
	return cmd
}

func writeReport(out io.Writer, report domain.HealthReport, output string) error {
	if !strings.EqualFold(output, OutputText) && output != "" {
		return writeStructured(out, report, output)
	}
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%-5s] %s: %s\n", strings.ToUpper(string(check.Status)), check.Name, check.Details)
	}
	fmt.Fprintf(out, "\n%d ok, %d warning(s), %d failed\n",
		report.Count(domain.HealthOK), report.Count(domain.HealthWarn), report.Count(domain.HealthError))
	return nil
}
