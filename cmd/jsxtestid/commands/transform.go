package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/jsxtestid/internal/runner"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
)

type transformFlags struct {
	boundaries string
	workers    int
	write      bool
	check      bool
	diff       bool
	noColor    bool
}

func newTransformCommand(root *rootFlags) *cobra.Command {
	flags := &transformFlags{}

	cmd := &cobra.Command{
		Use:   "transform [paths...]",
		Short: "Inject test ids into TSX/JSX files",
		Long: `Rewrite every supported file under the given paths (default: the current
directory). Hidden and vendored directories are skipped.

Without --write the rewrite is only reported. With --check the command fails
when any file would change.

Examples:
  jsxtestid transform src
  jsxtestid transform --write src/components
  jsxtestid transform --check --diff .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, root, flags, args)
		},
	}

	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "write rewritten files back to disk")
	cmd.Flags().BoolVar(&flags.check, "check", false, "exit non-zero when any file would change")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "print a unified diff for every changed file")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "parallel workers (default from config, 0 = CPU count)")
	cmd.Flags().StringVar(&flags.boundaries, "boundaries", "", "boundary matching: identity or name (default from config)")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	cmd.MarkFlagsMutuallyExclusive("write", "check")

	return cmd
}

func runTransform(cmd *cobra.Command, root *rootFlags, flags *transformFlags, args []string) error {
	if flags.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	sess, err := setup(cmd, root, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer sess.close()

	r, err := sess.newRunner(flags.write, flags.workers, flags.boundaries)
	if err != nil {
		return err
	}

	files, err := r.Collect(args...)
	if err != nil {
		return err
	}

	report, err := r.Run(cmd.Context(), files)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if !root.quiet {
		runner.WriteTable(out, report)
	}

	if flags.diff {
		if diffErr := runner.WriteDiffs(out, report); diffErr != nil {
			return diffErr
		}
	}

	if fileErr := report.Err(); fileErr != nil {
		return fileErr
	}

	if flags.check {
		if changed := report.Count(runner.StatusChanged); changed > 0 {
			return fmt.Errorf("%w: %d of %d", runner.ErrWouldChange, changed, len(report.Files))
		}
	}

	return nil
}
