package commands

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/doeshing/unlp/internal/domain"
	"github.com/doeshing/unlp/internal/infrastructure/cli/helpers"
	configinfra "github.com/doeshing/unlp/internal/infrastructure/config"
)

const defaultEditor = "vi"

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(env *Env) *cobra.Command {
	show := newConfigShowCommand(env)
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change unlp configuration",
		Args:  cobra.NoArgs,
		RunE:  show.RunE,
	}
	configCmd.Flags().AddFlagSet(show.Flags())

	configCmd.AddCommand(
		show,
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), env.fileLoader().Path())
				return nil
			},
		},
		newConfigGetCommand(env),
		newConfigSetCommand(env),
		newConfigEditCommand(env),
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the configuration file and environment overrides",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := env.fileLoader().Load(cmd.Context()); err != nil {
					return fmt.Errorf("configuration validation failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
				return nil
			},
		},
		newConfigResetCommand(env),
		&cobra.Command{
			Use:   "diff",
			Short: "Show the effective configuration against the defaults",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := env.fileLoader().Load(cmd.Context())
				if err != nil {
					return err
				}
				if diff := cmp.Diff(configinfra.DefaultConfig(), cfg); diff != "" {
					fmt.Fprintln(cmd.OutOrStdout(), diff)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoDifferencesFromDefault)
				return nil
			},
		},
	)
	return configCmd
}

func newConfigShowCommand(env *Env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (file plus environment)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.fileLoader().Load(cmd.Context())
			if err != nil {
				return err
			}
			// The map form keeps the snake_case keys in JSON too.
			tree, err := helpers.ConfigToMap(cfg)
			if err != nil {
				return err
			}
			return writeStructured(cmd.OutOrStdout(), tree, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputYAML, "Output format: yaml or json")
	return cmd
}

func newConfigGetCommand(env *Env) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value (e.g. backend.base_url)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.fileLoader().Load(cmd.Context())
			if err != nil {
				return err
			}
			tree, err := helpers.ConfigToMap(cfg)
			if err != nil {
				return err
			}
			value, ok := helpers.TraverseNestedMap(tree, strings.Split(args[0], "."))
			if !ok {
				return fmt.Errorf("key %s not found in configuration", args[0])
			}
			return writeStructured(cmd.OutOrStdout(), value, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputYAML, "Output format: yaml or json")
	return cmd
}

func newConfigSetCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value (value accepts YAML syntax)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return err
			}
			tree, err := helpers.ConfigToMap(cfg)
			if err != nil {
				return err
			}
			key := args[0]
			value := helpers.ParseYAMLValue(strings.Join(args[1:], " "))
			if !helpers.SetNestedMapValue(tree, strings.Split(key, "."), value) {
				return fmt.Errorf("unknown configuration key %s", key)
			}
			updated, err := helpers.MapToConfig(tree)
			if err != nil {
				return err
			}
			if err := helpers.SaveConfigWithValidation(container, updated); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", key)
			return nil
		},
	}
}

// newConfigEditCommand opens the file in $VISUAL or $EDITOR and restores the
// previous contents when the result no longer loads.
func newConfigEditCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit the configuration file in $VISUAL or $EDITOR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			loader := env.fileLoader()
			if _, err := loader.Load(ctx); err != nil {
				return fmt.Errorf("fix the configuration before editing: %w", err)
			}
			path := loader.Path()
			if err := helpers.BackupConfig(path); err != nil {
				return err
			}

			editor := editorCommand()
			run := exec.CommandContext(ctx, editor[0], append(editor[1:], path)...)
			run.Stdin = cmd.InOrStdin()
			run.Stdout = cmd.OutOrStdout()
			run.Stderr = cmd.ErrOrStderr()
			if err := run.Run(); err != nil {
				return fmt.Errorf("run editor %s: %w", editor[0], err)
			}

			if _, loadErr := loader.Load(ctx); loadErr != nil {
				if err := restoreBackup(path); err != nil {
					return errors.Join(loadErr, err)
				}
				return fmt.Errorf("edited configuration rejected, previous version restored: %w", loadErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
			return nil
		},
	}
}

func newConfigResetCommand(env *Env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes && !helpers.Confirm(out, cmd.InOrStdin(), "Overwrite the configuration with defaults?") {
				fmt.Fprintln(out, MsgResetCancelled)
				return nil
			}
			loader := env.fileLoader()
			if err := helpers.BackupConfig(loader.Path()); err != nil {
				return err
			}
			cfg, err := loader.Reset()
			if err != nil {
				return fmt.Errorf("reset configuration: %w", err)
			}
			fmt.Fprintf(out, "Configuration reset at %s (backup: %s)\n", loader.Path(), loader.Path()+helpers.BackupSuffix)
			return writeStructured(out, cfg, OutputYAML)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func restoreBackup(path string) error {
	data, err := os.ReadFile(path + helpers.BackupSuffix)
	if err != nil {
		return fmt.Errorf("read configuration backup: %w", err)
	}
	return os.WriteFile(path, data, domain.SecureFilePermissions)
}

func editorCommand() []string {
	for _, name := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(name)); len(fields) > 0 {
			return fields
		}
	}
	return []string{defaultEditor}
}
