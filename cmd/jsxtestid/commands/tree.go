package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
)

const formatYAML = "yaml"

// ErrUnsupportedFile is returned for files the parser does not accept.
var ErrUnsupportedFile = errors.New("unsupported file type")

type treeFlags struct {
	format   string
	filename string
	query    string
	ids      bool
}

func newTreeCommand(root *rootFlags) *cobra.Command {
	flags := &treeFlags{}

	cmd := &cobra.Command{
		Use:   "tree <file|->",
		Short: "Print the program tree of a TSX/JSX file",
		Long: `Parse a TSX/JSX file and print the program tree the rewriter operates on.

JSON and msgpack output can be fed back into "jsxtestid apply". YAML output is
for reading only.

Examples:
  jsxtestid tree src/App.tsx
  jsxtestid tree --format yaml --query JSXOpening src/App.tsx
  cat App.tsx | jsxtestid tree --filename App.tsx -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, root, flags, args[0])
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", string(node.FormatJSON), "output format: json, yaml or msgpack")
	cmd.Flags().StringVar(&flags.filename, "filename", "", "file name used to parse stdin (default: stdin.tsx)")
	cmd.Flags().StringVar(&flags.query, "query", "", "print only nodes of this type (json and yaml only)")
	cmd.Flags().BoolVar(&flags.ids, "ids", false, "assign stable content ids to every node")

	return cmd
}

func runTree(cmd *cobra.Command, root *rootFlags, flags *treeFlags, path string) error {
	sess, err := setup(cmd, root, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	content, label, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	filename := label
	if path == stdinPath {
		filename = "stdin.tsx"
	}

	if flags.filename != "" {
		filename = flags.filename
	}

	parser := jsxast.NewParser(sess.cfg.Runner.Extensions...)
	if !parser.IsSupported(filename, nil) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}

	program, err := parser.Parse(cmd.Context(), filename, content)
	if err != nil {
		return err
	}

	if flags.ids {
		program.AssignStableIDs()
	}

	out := cmd.OutOrStdout()

	if flags.query != "" {
		want, typeErr := node.ParseType(flags.query)
		if typeErr != nil {
			return typeErr
		}

		return writeMatches(cmd, flags.format, program, want)
	}

	if flags.format == formatYAML {
		return writeYAML(out, program.ToMap())
	}

	format, err := node.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	return node.Encode(out, program, format)
}

func writeMatches(cmd *cobra.Command, format string, program *node.Node, want node.Type) error {
	matches := program.Find(func(candidate *node.Node) bool {
		return candidate.Type == want
	})

	found := make([]map[string]any, 0, len(matches))
	for _, match := range matches {
		found = append(found, match.ToMap())
	}

	switch format {
	case formatYAML:
		return writeYAML(cmd.OutOrStdout(), found)
	case string(node.FormatJSON):
		return writeJSON(cmd.OutOrStdout(), found)
	default:
		return fmt.Errorf("%w: %q with --query", node.ErrUnknownFormat, format)
	}
}
