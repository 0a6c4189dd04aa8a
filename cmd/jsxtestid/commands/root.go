// Package commands implements the jsxtestid CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/jsxtestid/internal/runner"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/config"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/transform"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/version"
)

// Exit codes.
const (
	exitCodeFailure           = 1
	exitCodeValidationFailure = 2
)

// ErrInvalidPluginConfig is returned by "config validate" for a rejected document.
var ErrInvalidPluginConfig = errors.New("plugin configuration is invalid")

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	verbose    bool
	quiet      bool
}

// NewRootCommand builds the jsxtestid command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "jsxtestid",
		Short: "Inject data-testid attributes into React components",
		Long: `jsxtestid rewrites TSX/JSX sources so that the root element of every
React component carries a stable test id derived from the component name.

Commands:
  transform  Rewrite files or directories in place or in check mode
  apply      Rewrite a serialized program tree read from stdin
  tree       Print the program tree of a source file
  config     Validate plugin configuration
  watch      Rewrite sources as they change
  mcp        Start the MCP server for AI agent integration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is ./.jsxtestid.yaml or $HOME/.jsxtestid.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(newTransformCommand(flags))
	rootCmd.AddCommand(newApplyCommand(flags))
	rootCmd.AddCommand(newTreeCommand(flags))
	rootCmd.AddCommand(newConfigCommand(flags))
	rootCmd.AddCommand(newWatchCommand(flags))
	rootCmd.AddCommand(newMCPCommand(flags))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if errors.Is(err, ErrInvalidPluginConfig) {
		return exitCodeValidationFailure
	}

	return exitCodeFailure
}

// session bundles what a command needs after global setup.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	logger    *slog.Logger
}

func (s *session) close() {
	shutdownErr := s.providers.Shutdown(context.Background())
	if shutdownErr != nil {
		s.logger.Warn("observability shutdown failed", "error", shutdownErr)
	}
}

// setup loads the project configuration and initializes observability.
func setup(cmd *cobra.Command, flags *rootFlags, mode observability.AppMode) (*session, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	obsCfg, err := observabilityConfig(cfg, flags, mode)
	if err != nil {
		return nil, err
	}

	obsCfg.LogWriter = cmd.ErrOrStderr()

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	return &session{cfg: cfg, providers: providers, logger: providers.Logger}, nil
}

func observabilityConfig(cfg *config.Config, flags *rootFlags, mode observability.AppMode) (observability.Config, error) {
	level, err := observability.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Config{}, err
	}

	switch {
	case flags.verbose:
		level = slog.LevelDebug
	case flags.quiet:
		level = slog.LevelError
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Telemetry.Environment
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == "json" || mode == observability.ModeMCP
	obsCfg.DebugTrace = flags.verbose

	return obsCfg, nil
}

// newRunner builds a runner from the project configuration. Flag values
// override the configuration when set.
func (s *session) newRunner(write bool, workers int, boundaries string) (*runner.Runner, error) {
	cfg := *s.cfg

	if boundaries != "" {
		if boundaries != config.BoundariesIdentity && boundaries != config.BoundariesName {
			return nil, fmt.Errorf("%w: %q", config.ErrInvalidBoundaries, boundaries)
		}

		cfg.Runner.Boundaries = boundaries
	}

	if workers > 0 {
		cfg.Runner.Workers = workers
	}

	maxSize, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewTransformMetrics(s.providers.Meter)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.TransformOptions(),
		transform.WithLogger(s.logger),
		transform.WithTracer(s.providers.Tracer),
	)

	return runner.New(
		jsxast.NewParser(cfg.Runner.Extensions...),
		transform.New(cfg.TransformConfig(), opts...),
		runner.WithWorkers(cfg.Runner.Workers),
		runner.WithMaxFileSize(maxSize),
		runner.WithWrite(write),
		runner.WithLogger(s.logger),
		runner.WithMetrics(metrics),
	), nil
}
