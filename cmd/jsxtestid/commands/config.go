package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/config"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/transform"
)

func newConfigCommand(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate plugin configuration",
	}

	cmd.AddCommand(newConfigValidateCommand(root))
	cmd.AddCommand(newConfigSchemaCommand())

	return cmd
}

func newConfigValidateCommand(root *rootFlags) *cobra.Command {
	var colorize, nocolor bool

	cmd := &cobra.Command{
		Use:   "validate [file.json|-]",
		Short: "Validate a plugin configuration against the schema",
		Long: `Validate a plugin configuration document against the embedded JSON schema.

Without an argument the plugin section of the project configuration is
validated in its wire form. Exits with status 2 when the document is invalid.

Examples:
  jsxtestid config validate
  jsxtestid config validate plugin.json
  echo '{"attrName":"data-qa","ignoreComponents":[],"ignoreFiles":[]}' | jsxtestid config validate -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if nocolor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			} else if colorize {
				color.NoColor = false //nolint:reassign // intentional override of library global
			}

			raw, label, err := loadPluginDocument(cmd, root, args)
			if err != nil {
				return err
			}

			return runConfigValidate(cmd, root.quiet, raw, label)
		},
	}

	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")

	return cmd
}

func newConfigSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the plugin configuration JSON schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(transform.ConfigSchema())
			if err != nil {
				return fmt.Errorf("write schema: %w", err)
			}

			return nil
		},
	}
}

func loadPluginDocument(cmd *cobra.Command, root *rootFlags, args []string) (raw []byte, label string, err error) {
	if len(args) == 1 {
		return readInput(cmd, args[0])
	}

	cfg, err := config.LoadConfig(root.configPath)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}

	raw, err = cfg.PluginJSON()
	if err != nil {
		return nil, "", err
	}

	return raw, "project config", nil
}

func runConfigValidate(cmd *cobra.Command, quiet bool, raw []byte, label string) error {
	out := cmd.OutOrStdout()

	problems, err := transform.ValidateConfig(raw)
	if err != nil {
		var cfgErr *transform.ConfigError
		if !errors.As(err, &cfgErr) {
			return err
		}

		color.New(color.FgRed).Fprintf(out, "Invalid JSON in %s: %v\n", label, cfgErr.Cause)

		return fmt.Errorf("%w: %s", ErrInvalidPluginConfig, label)
	}

	if len(problems) == 0 {
		if !quiet {
			color.New(color.FgGreen).Fprintf(out, "Plugin configuration is valid (%s)\n", label)
		}

		return nil
	}

	color.New(color.FgRed).Fprintf(out, "Plugin configuration validation failed (%s)\n", label)
	fmt.Fprintf(out, "\nErrors:\n")

	for _, problem := range problems {
		color.New(color.FgRed).Fprintf(out, "  - %s\n", problem)
	}

	fmt.Fprintf(out, "\nExpected form:\n")
	color.New(color.FgCyan).Fprintf(out, "  %s\n", `{"attrName":"data-testid","ignoreComponents":[],"ignoreFiles":[]}`)

	return fmt.Errorf("%w: %d problem(s) in %s", ErrInvalidPluginConfig, len(problems), label)
}
