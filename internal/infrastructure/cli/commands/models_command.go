package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doeshing/unlp/internal/app"
	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/infrastructure/cli/helpers"
)

// NewModelsCommand creates the models command with all subcommands
func NewModelsCommand(env *Env) *cobra.Command {
	var output string

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List and select backend models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listModels(cmd.Context(), cmd.OutOrStdout(), env, output)
		},
	}
	modelsCmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format: table, json or yaml")

	modelsCmd.AddCommand(
		newModelsListCommand(env),
		newModelsUseCommand(env),
	)

	return modelsCmd
}

func newModelsListCommand(env *Env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the models the backend offers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listModels(cmd.Context(), cmd.OutOrStdout(), env, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputTable, "Output format: table, json or yaml")
	return cmd
}

func newModelsUseCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Set the model new sessions start with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setDefaultModel(cmd.Context(), cmd.OutOrStdout(), env, args[0])
		},
	}
}

func listModels(ctx context.Context, out io.Writer, env *Env, output string) error {
	container, err := env.Container(ctx)
	if err != nil {
		return err
	}
	models, err := container.Machine.RefreshModels(ctx)
	if err != nil {
		return err
	}
	return writeModels(out, models, container.Config.InitialModel(), output)
}

func writeModels(out io.Writer, models []domain.ModelDescriptor, current, output string) error {
	switch strings.ToLower(output) {
	case "", OutputTable:
		if len(models) == 0 {
			fmt.Fprintln(out, MsgNoModels)
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tMAX TOKENS\tDEFAULT")
		for _, model := range models {
			marker := ""
			if model.ID == current {
				marker = "*"
			}
			maxTokens := "-"
			if model.MaxTokens > 0 {
				maxTokens = fmt.Sprint(model.MaxTokens)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", model.ID, model.DisplayName(), maxTokens, marker)
		}
		return tw.Flush()
	case OutputJSON, OutputYAML:
		return writeStructured(out, models, output)
	default:
		return fmt.Errorf(ErrUnsupportedOutput, output, "table, json or yaml")
	}
}

// setDefaultModel validates id against the catalog when it is reachable and
// persists it as preferences.default_model.
func setDefaultModel(ctx context.Context, out io.Writer, env *Env, id string) error {
	container, err := env.Container(ctx)
	if err != nil {
		return err
	}
	if _, err := container.Machine.RefreshModels(ctx); err != nil {
		helpers.PrintWarnings(out, err.Error()+"; saving without validation")
	}
	if err := container.Machine.SelectModel(id); err != nil {
		return err
	}
	return persistDefaultModel(ctx, container, id, out)
}

func persistDefaultModel(ctx context.Context, container *app.Container, id string, out io.Writer) error {
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.SetDefaultModel(id)
	if err := helpers.SaveConfigWithValidation(container, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Default model set to %s\n", id)
	return nil
}
