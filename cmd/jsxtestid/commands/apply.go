package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/plugin"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/transform"
)

type applyFlags struct {
	input        string
	filename     string
	pluginConfig string
	format       string
	outputFormat string
}

func newApplyCommand(root *rootFlags) *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Rewrite a serialized program tree",
		Long: `Read a program tree (as printed by "jsxtestid tree"), run the rewrite over
it and write the resulting tree to stdout.

The plugin configuration defaults to the project configuration; --plugin-config
accepts the strict host JSON form instead.

Examples:
  jsxtestid tree -f json src/App.tsx | jsxtestid apply --filename src/App.tsx
  jsxtestid apply --format msgpack --plugin-config '{"attrName":"data-qa","ignoreComponents":[],"ignoreFiles":[]}' < tree.bin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd, root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", stdinPath, "tree file to read, - for stdin")
	cmd.Flags().StringVar(&flags.filename, "filename", "", "logical file name used for ignoreFiles matching")
	cmd.Flags().StringVar(&flags.pluginConfig, "plugin-config", "", "plugin configuration JSON (default from project config)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", string(node.FormatJSON), "input tree format: json or msgpack")
	cmd.Flags().StringVarP(&flags.outputFormat, "output-format", "o", "", "output tree format (default: same as input)")

	return cmd
}

func runApply(cmd *cobra.Command, root *rootFlags, flags *applyFlags) error {
	inFormat, err := node.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	outFormat := inFormat

	if flags.outputFormat != "" {
		outFormat, err = node.ParseFormat(flags.outputFormat)
		if err != nil {
			return err
		}
	}

	sess, err := setup(cmd, root, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	raw, label, err := readInput(cmd, flags.input)
	if err != nil {
		return err
	}

	program, err := node.Decode(bytes.NewReader(raw), inFormat)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	pluginJSON := []byte(flags.pluginConfig)
	if flags.pluginConfig == "" {
		pluginJSON, err = sess.cfg.PluginJSON()
		if err != nil {
			return err
		}
	}

	opts := append(sess.cfg.TransformOptions(),
		transform.WithLogger(sess.logger),
		transform.WithTracer(sess.providers.Tracer),
	)

	result, err := plugin.Process(cmd.Context(), program,
		plugin.Metadata{Filename: flags.filename, Config: pluginJSON}, opts...)
	if err != nil {
		return err
	}

	sess.logger.DebugContext(cmd.Context(), "tree rewritten",
		"input", label,
		"injected", len(result.Injected),
		"changes", result.Changes(),
		"skipped", result.Skipped,
	)

	return node.Encode(cmd.OutOrStdout(), program, outFormat)
}
